package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/storage"

	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Store loads and saves observed progress.
type Store interface {
	// Load returns the saved observations; an empty ledger yields an empty map.
	Load(ctx context.Context) (reconcile.Observed, error)
	// Save replaces the saved observations.
	Save(ctx context.Context, observed reconcile.Observed) error
	// Reset forgets every observation, forcing the next pass to download all locales.
	Reset(ctx context.Context) error
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendDatabase = "database"
)

// Deps carries the collaborators a backend may need.
type Deps struct {
	FS      afero.Fs
	Storage storage.Client
	Bucket  string
	DB      *gorm.DB
}

// New builds the Store selected by cfg.Backend.
func New(cfg Config, deps Deps) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if deps.FS == nil {
			deps.FS = afero.NewOsFs()
		}
		return NewFileStore(deps.FS, cfg.Path), nil
	case BackendS3:
		if deps.Storage == nil {
			return nil, errors.New("ledger backend s3 requires a storage client")
		}
		return NewObjectStore(deps.Storage, deps.Bucket, cfg.ObjectKey), nil
	case BackendDatabase:
		if deps.DB == nil {
			return nil, errors.New("ledger backend database requires a database connection")
		}
		return NewDatabaseStore(deps.DB)
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", cfg.Backend)
	}
}

// IsValidBackend reports whether name selects a known backend.
func IsValidBackend(name string) bool {
	switch strings.ToLower(name) {
	case "", BackendMemory, BackendFile, BackendS3, BackendDatabase:
		return true
	default:
		return false
	}
}
