package distributor

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/errdefs"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"

	"golang.org/x/sync/errgroup"
)

// API is the subset of the Crowdin client used by CrowdinRemote.
type API interface {
	ListFiles(ctx context.Context) ([]crowdin.File, error)
	ListStrings(ctx context.Context, fileID int64) ([]crowdin.SourceString, error)
	FileProgress(ctx context.Context, fileID int64) ([]crowdin.LanguageProgress, error)
	ListDirectories(ctx context.Context) ([]crowdin.Directory, error)
	AddDirectory(ctx context.Context, name string, parentID *int64) (crowdin.Directory, error)
	AddStorage(ctx context.Context, fileName string, content []byte) (crowdin.Storage, error)
	AddFile(ctx context.Context, req crowdin.AddFileRequest) (crowdin.File, error)
	UpdateFile(ctx context.Context, fileID, storageID int64) (crowdin.File, error)
	BuildFileTranslation(ctx context.Context, fileID int64, languageID string) (crowdin.DownloadLink, error)
	Fetch(ctx context.Context, link crowdin.DownloadLink) ([]byte, error)
}

// fetchConcurrency bounds parallel per-file requests while fetching state.
const fetchConcurrency = 8

// CrowdinRemote adapts a Crowdin project to reconcile.Remote. Local paths are
// relative to the source root; remote paths live under basePath.
type CrowdinRemote struct {
	api      API
	basePath string

	mu    sync.Mutex
	files map[string]crowdin.File

	// dirMu serializes directory creation across concurrent uploads.
	dirMu sync.Mutex
	dirs  map[string]int64
}

// NewCrowdinRemote returns a remote for the project behind api.
func NewCrowdinRemote(api API, basePath string) *CrowdinRemote {
	return &CrowdinRemote{api: api, basePath: strings.Trim(basePath, "/")}
}

// localPath maps a Crowdin file path to a local path. ok is false for files
// outside basePath.
func (r *CrowdinRemote) localPath(remote string) (string, bool) {
	p := strings.TrimPrefix(remote, "/")
	if r.basePath == "" {
		return p, true
	}
	prefix := r.basePath + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}

func (r *CrowdinRemote) remotePath(local string) string {
	return "/" + path.Join(r.basePath, local)
}

// FetchProjectState lists the project's files with their strings and progress.
func (r *CrowdinRemote) FetchProjectState(ctx context.Context) (reconcile.ProjectState, error) {
	files, err := r.api.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	index := make(map[string]crowdin.File, len(files))
	var paths []string
	for _, f := range files {
		local, ok := r.localPath(f.Path)
		if !ok {
			continue
		}
		index[local] = f
		paths = append(paths, local)
	}

	states := make([]reconcile.RemoteFileState, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, local := range paths {
		f := index[local]
		g.Go(func() error {
			state, err := r.fileState(gctx, local, f)
			if err != nil {
				return err
			}
			states[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.files = index
	r.mu.Unlock()

	out := make(reconcile.ProjectState, len(states))
	for _, s := range states {
		out[s.Path] = s
	}
	return out, nil
}

func (r *CrowdinRemote) fileState(ctx context.Context, local string, f crowdin.File) (reconcile.RemoteFileState, error) {
	strs, err := r.api.ListStrings(ctx, f.ID)
	if err != nil {
		return reconcile.RemoteFileState{}, fmt.Errorf("listing strings of %s: %w", local, err)
	}
	progress, err := r.api.FileProgress(ctx, f.ID)
	if err != nil {
		return reconcile.RemoteFileState{}, fmt.Errorf("fetching progress of %s: %w", local, err)
	}

	state := reconcile.RemoteFileState{
		Path:     local,
		Revision: strconv.FormatInt(f.RevisionID, 10),
		Keys:     make(map[string]string, len(strs)),
		Progress: make(map[string]float64, len(progress)),
	}
	for _, s := range strs {
		state.Keys[s.Identifier] = resource.Hash(s.Text.Value())
	}
	for _, p := range progress {
		state.Progress[p.LanguageID] = float64(p.TranslationProgress)
	}
	return state, nil
}

func (r *CrowdinRemote) lookup(ctx context.Context, local string) (crowdin.File, bool, error) {
	r.mu.Lock()
	known := r.files != nil
	f, ok := r.files[local]
	r.mu.Unlock()
	if known {
		return f, ok, nil
	}

	files, err := r.api.ListFiles(ctx)
	if err != nil {
		return crowdin.File{}, false, fmt.Errorf("listing files: %w", err)
	}
	index := make(map[string]crowdin.File, len(files))
	for _, f := range files {
		if p, ok := r.localPath(f.Path); ok {
			index[p] = f
		}
	}
	r.mu.Lock()
	r.files = index
	r.mu.Unlock()
	f, ok = index[local]
	return f, ok, nil
}

// UploadSourceFile updates the remote file at local, creating it and its
// directories when missing, and returns the new revision.
func (r *CrowdinRemote) UploadSourceFile(ctx context.Context, local string, content []byte) (string, error) {
	existing, exists, err := r.lookup(ctx, local)
	if err != nil {
		return "", err
	}

	storage, err := r.api.AddStorage(ctx, path.Base(local), content)
	if err != nil {
		return "", fmt.Errorf("uploading %s to storage: %w", local, err)
	}

	var file crowdin.File
	if exists {
		file, err = r.api.UpdateFile(ctx, existing.ID, storage.ID)
		if err != nil {
			return "", fmt.Errorf("updating %s: %w", local, err)
		}
	} else {
		dirID, err := r.ensureDirectory(ctx, path.Dir(r.remotePath(local)))
		if err != nil {
			return "", err
		}
		file, err = r.api.AddFile(ctx, crowdin.AddFileRequest{StorageID: storage.ID, Name: path.Base(local), DirectoryID: dirID})
		if err != nil {
			// the file may exist despite the error; the next attempt re-lists
			r.forgetFiles()
			return "", fmt.Errorf("adding %s: %w", local, err)
		}
	}

	r.mu.Lock()
	if r.files == nil {
		r.files = map[string]crowdin.File{}
	}
	r.files[local] = file
	r.mu.Unlock()

	return strconv.FormatInt(file.RevisionID, 10), nil
}

func (r *CrowdinRemote) forgetFiles() {
	r.mu.Lock()
	r.files = nil
	r.mu.Unlock()
}

// ensureDirectory returns the id of the remote directory dir, creating missing
// segments. The project root has no id.
func (r *CrowdinRemote) ensureDirectory(ctx context.Context, dir string) (*int64, error) {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return nil, nil
	}

	r.dirMu.Lock()
	defer r.dirMu.Unlock()

	if r.dirs == nil {
		dirs, err := r.api.ListDirectories(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing directories: %w", err)
		}
		r.dirs = make(map[string]int64, len(dirs))
		for _, d := range dirs {
			r.dirs[strings.Trim(d.Path, "/")] = d.ID
		}
	}

	var parent *int64
	current := ""
	for _, segment := range strings.Split(dir, "/") {
		current = path.Join(current, segment)
		if id, ok := r.dirs[current]; ok {
			parent = &id
			continue
		}
		created, err := r.api.AddDirectory(ctx, segment, parent)
		if err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", current, err)
		}
		r.dirs[current] = created.ID
		id := created.ID
		parent = &id
	}
	return parent, nil
}

// DownloadTranslations exports local in locale and fetches the result.
func (r *CrowdinRemote) DownloadTranslations(ctx context.Context, locale, local string) ([]byte, error) {
	f, ok, err := r.lookup(ctx, local)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errdefs.NotFoundError{Op: "download translations", Resource: r.remotePath(local)}
	}

	link, err := r.api.BuildFileTranslation(ctx, f.ID, locale)
	if err != nil {
		return nil, fmt.Errorf("exporting %s for %s: %w", local, locale, err)
	}
	content, err := r.api.Fetch(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetching %s for %s: %w", local, locale, err)
	}
	return content, nil
}

// SourceTexts returns the current remote source text of every string of local,
// keyed by identifier. A file unknown to the project has no texts.
func (r *CrowdinRemote) SourceTexts(ctx context.Context, local string) (map[string]string, error) {
	f, ok, err := r.lookup(ctx, local)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}
	strs, err := r.api.ListStrings(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("listing strings of %s: %w", local, err)
	}
	out := make(map[string]string, len(strs))
	for _, s := range strs {
		out[s.Identifier] = s.Text.Value()
	}
	return out, nil
}
