package crowdin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crowdin-distributor/core/errdefs"

	"github.com/go-resty/resty/v2"
)

const maxPageSize = 500

// Client talks to one Crowdin project.
type Client struct {
	http      *resty.Client
	download  *resty.Client
	token     string
	projectID int64
	pageSize  int
}

// New builds a client from cfg.
func New(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	h := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(timeout)*time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RateLimitRetries).
		SetRetryWaitTime(50 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{
		http:      h,
		download:  resty.New().SetTimeout(time.Duration(timeout) * time.Second),
		token:     cfg.Token,
		projectID: cfg.ProjectID,
		pageSize:  pageSize,
	}
}

// ProjectID returns the configured project id.
func (c *Client) ProjectID() int64 { return c.projectID }

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetPathParam("projectId", strconv.FormatInt(c.projectID, 10))
}

// ListFiles returns every source file of the project.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	return paginate[File](ctx, c, "list files", "/projects/{projectId}/files", nil)
}

// ListStrings returns the source strings of one file.
func (c *Client) ListStrings(ctx context.Context, fileID int64) ([]SourceString, error) {
	query := url.Values{"fileId": {strconv.FormatInt(fileID, 10)}}
	return paginate[SourceString](ctx, c, "list strings", "/projects/{projectId}/strings", query)
}

// ListDirectories returns every directory of the project.
func (c *Client) ListDirectories(ctx context.Context) ([]Directory, error) {
	return paginate[Directory](ctx, c, "list directories", "/projects/{projectId}/directories", nil)
}

// FileProgress returns per-language completion of one file.
func (c *Client) FileProgress(ctx context.Context, fileID int64) ([]LanguageProgress, error) {
	return paginate[LanguageProgress](ctx, c, "file progress", "/projects/{projectId}/files/"+strconv.FormatInt(fileID, 10)+"/languages/progress", nil)
}

// AddStorage uploads content as a storage blob.
func (c *Client) AddStorage(ctx context.Context, fileName string, content []byte) (Storage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/octet-stream").
		SetHeader("Crowdin-API-FileName", url.PathEscape(fileName)).
		SetBody(content).
		Post("/storages")
	if err := check("add storage", resp, err); err != nil {
		return Storage{}, err
	}
	return decodeData[Storage](resp.Body())
}

// AddFile creates a source file from a storage.
func (c *Client) AddFile(ctx context.Context, req AddFileRequest) (File, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/projects/{projectId}/files")
	if err := check("add file", resp, err); err != nil {
		return File{}, err
	}
	return decodeData[File](resp.Body())
}

// UpdateFile replaces a source file's content, keeping existing translations.
func (c *Client) UpdateFile(ctx context.Context, fileID, storageID int64) (File, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("fileId", strconv.FormatInt(fileID, 10)).
		SetBody(updateFileRequest{StorageID: storageID, UpdateOption: "keep_translations_and_approvals"}).
		Put("/projects/{projectId}/files/{fileId}")
	if err := check("update file", resp, err); err != nil {
		return File{}, err
	}
	return decodeData[File](resp.Body())
}

// AddDirectory creates a directory under parentID (nil for the project root).
func (c *Client) AddDirectory(ctx context.Context, name string, parentID *int64) (Directory, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(addDirectoryRequest{Name: name, DirectoryID: parentID}).
		Post("/projects/{projectId}/directories")
	if err := check("add directory", resp, err); err != nil {
		return Directory{}, err
	}
	return decodeData[Directory](resp.Body())
}

// BuildFileTranslation exports one file in one target language.
func (c *Client) BuildFileTranslation(ctx context.Context, fileID int64, languageID string) (DownloadLink, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("fileId", strconv.FormatInt(fileID, 10)).
		SetBody(buildFileRequest{TargetLanguageID: languageID}).
		Post("/projects/{projectId}/translations/builds/files/{fileId}")
	if err := check("build file translation", resp, err); err != nil {
		return DownloadLink{}, err
	}
	return decodeData[DownloadLink](resp.Body())
}

// BuildProject starts a project-wide translation build.
func (c *Client) BuildProject(ctx context.Context, skipUntranslated bool) (ProjectBuild, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(buildProjectRequest{SkipUntranslatedStrings: skipUntranslated}).
		Post("/projects/{projectId}/translations/builds")
	if err := check("build project", resp, err); err != nil {
		return ProjectBuild{}, err
	}
	return decodeData[ProjectBuild](resp.Body())
}

// BuildStatus polls a project build.
func (c *Client) BuildStatus(ctx context.Context, buildID int64) (ProjectBuild, error) {
	resp, err := c.request(ctx).
		SetPathParam("buildId", strconv.FormatInt(buildID, 10)).
		Get("/projects/{projectId}/translations/builds/{buildId}")
	if err := check("build status", resp, err); err != nil {
		return ProjectBuild{}, err
	}
	return decodeData[ProjectBuild](resp.Body())
}

// DownloadBuild returns a link to the zip produced by a finished build.
func (c *Client) DownloadBuild(ctx context.Context, buildID int64) (DownloadLink, error) {
	resp, err := c.request(ctx).
		SetPathParam("buildId", strconv.FormatInt(buildID, 10)).
		Get("/projects/{projectId}/translations/builds/{buildId}/download")
	if err := check("download build", resp, err); err != nil {
		return DownloadLink{}, err
	}
	return decodeData[DownloadLink](resp.Body())
}

// Fetch downloads the content behind a signed link. No credentials are sent.
func (c *Client) Fetch(ctx context.Context, link DownloadLink) ([]byte, error) {
	if link.URL == "" {
		return nil, &errdefs.ValidationError{Op: "fetch", Message: "empty download link"}
	}
	resp, err := c.download.R().SetContext(ctx).Get(link.URL)
	if err := check("fetch", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func paginate[T any](ctx context.Context, c *Client, op, path string, query url.Values) ([]T, error) {
	var out []T
	for offset := 0; ; offset += c.pageSize {
		req := c.request(ctx).
			SetQueryParamsFromValues(query).
			SetQueryParam("limit", strconv.Itoa(c.pageSize)).
			SetQueryParam("offset", strconv.Itoa(offset))
		resp, err := req.Get(path)
		if err := check(op, resp, err); err != nil {
			return nil, err
		}
		items, err := decodePage[T](resp.Body())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, items...)
		if len(items) < c.pageSize {
			return out, nil
		}
	}
}

// check maps transport and HTTP failures onto the errdefs taxonomy.
func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &errdefs.CancelledError{Err: err}
		}
		return &errdefs.RemoteUnavailableError{Op: op, Err: err}
	}
	status := resp.StatusCode()
	if status < 400 {
		return nil
	}

	message := resp.Status()
	if env, derr := decodeEnvelope(resp.Body()); derr == nil {
		if m := env.Message(); m != "" {
			message = m
		}
	}

	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return &errdefs.RemoteUnavailableError{
			Op:         op,
			StatusCode: status,
			RetryAfter: retryAfter(resp.Header().Get("Retry-After")),
			Err:        errors.New(message),
		}
	case status == http.StatusNotFound:
		return &errdefs.NotFoundError{Op: op, Resource: resp.Request.URL}
	default:
		return &errdefs.ValidationError{Op: op, StatusCode: status, Message: message}
	}
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
