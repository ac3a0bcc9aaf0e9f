package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crowdin-distributor/core/reconcile"

	"github.com/spf13/afero"
)

// FileStore keeps the ledger in a YAML file.
type FileStore struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// NewFileStore returns a ledger stored at path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path, now: time.Now}
}

func (f *FileStore) Load(ctx context.Context) (reconcile.Observed, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return reconcile.Observed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", f.path, err)
	}
	return decode(data)
}

// Save writes to a temporary file and renames it over the ledger.
func (f *FileStore) Save(ctx context.Context, observed reconcile.Observed) error {
	data, err := encode(observed, f.now())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

func (f *FileStore) Reset(ctx context.Context) error {
	err := f.fs.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing ledger: %w", err)
	}
	return nil
}
