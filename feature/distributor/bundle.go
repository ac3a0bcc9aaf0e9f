package distributor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/errdefs"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"

	"go.uber.org/zap"
)

// BuildAPI is the subset of the Crowdin client used for project builds.
type BuildAPI interface {
	BuildProject(ctx context.Context, skipUntranslated bool) (crowdin.ProjectBuild, error)
	BuildStatus(ctx context.Context, buildID int64) (crowdin.ProjectBuild, error)
	DownloadBuild(ctx context.Context, buildID int64) (crowdin.DownloadLink, error)
	Fetch(ctx context.Context, link crowdin.DownloadLink) ([]byte, error)
}

// Bundler exports the whole project as one zip, adds the source files and
// validates every translation in it.
type Bundler struct {
	api      BuildAPI
	registry *resource.Registry
	basePath string
	poll     time.Duration
	sleeper  reconcile.Sleeper
	retrier  *reconcile.Retrier
	logger   *zap.Logger
}

// NewBundler returns a bundler polling build status every poll.
func NewBundler(api BuildAPI, registry *resource.Registry, basePath string, policy reconcile.RetryPolicy, poll time.Duration, sleeper reconcile.Sleeper, logger *zap.Logger) *Bundler {
	if sleeper == nil {
		sleeper = reconcile.TimerSleeper
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bundler{
		api:      api,
		registry: registry,
		basePath: strings.Trim(basePath, "/"),
		poll:     poll,
		sleeper:  sleeper,
		retrier:  reconcile.NewRetrier(policy, sleeper),
		logger:   logger,
	}
}

func (b *Bundler) call(ctx context.Context, fn func(context.Context) error) error {
	return b.retrier.Do(ctx, fn).Err
}

// Build runs a project build and returns the patched bundle. A non-nil error
// with a non-nil bundle means the bundle failed validation and must not ship.
func (b *Bundler) Build(ctx context.Context, snapshot *resource.Snapshot) ([]byte, error) {
	var build crowdin.ProjectBuild
	err := b.call(ctx, func(ctx context.Context) (err error) {
		build, err = b.api.BuildProject(ctx, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("starting project build: %w", err)
	}
	b.logger.Info("Project build started", zap.Int64("build_id", build.ID))

	for !build.Status.Done() {
		if err := b.sleeper.Sleep(ctx, b.poll); err != nil {
			return nil, &errdefs.CancelledError{Err: err}
		}
		id := build.ID
		err := b.call(ctx, func(ctx context.Context) (err error) {
			build, err = b.api.BuildStatus(ctx, id)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("polling build %d: %w", id, err)
		}
		b.logger.Debug("Project build progress", zap.Int64("build_id", build.ID), zap.Int("progress", build.Progress))
	}
	if build.Status != crowdin.BuildFinished {
		return nil, fmt.Errorf("build %d ended with status %s", build.ID, build.Status)
	}

	var data []byte
	err = b.call(ctx, func(ctx context.Context) error {
		link, err := b.api.DownloadBuild(ctx, build.ID)
		if err != nil {
			return err
		}
		data, err = b.api.Fetch(ctx, link)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("downloading build %d: %w", build.ID, err)
	}

	return b.Patch(data, snapshot)
}

// Patch adds the source files of snapshot to bundle and validates every
// translation entry of the form <locale>/<path> against its source.
func (b *Bundler) Patch(bundle []byte, snapshot *resource.Snapshot) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	entries := map[string][]byte{}
	var failures []error
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		entries[f.Name] = content

		locale, file, ok := b.split(f.Name)
		if !ok {
			continue
		}
		source, ok := snapshot.File(file)
		if !ok {
			continue
		}
		values, err := b.registry.ParseValues(file, content)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		if err := resource.NewValidator(source.Values()).Validate(locale+"/"+file, values); err != nil {
			failures = append(failures, err)
		}
	}

	for _, p := range snapshot.Paths() {
		src, _ := snapshot.File(p)
		entries[p] = src.Content
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finishing bundle: %w", err)
	}
	return buf.Bytes(), errors.Join(failures...)
}

// split maps a bundle entry to its locale and local source path.
func (b *Bundler) split(name string) (locale, file string, ok bool) {
	locale, rest, found := strings.Cut(strings.TrimPrefix(name, "/"), "/")
	if !found || locale == "" {
		return "", "", false
	}
	if b.basePath != "" {
		rest = strings.TrimPrefix(rest, b.basePath+"/")
	}
	return locale, rest, true
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return content, nil
}
