package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crowdin-distributor/core/config"
	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/database"
	"crowdin-distributor/core/ledger"
	"crowdin-distributor/core/logger"
	"crowdin-distributor/core/publish"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/storage"
	"crowdin-distributor/feature/distributor"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *crowdin.Client
	remote  *distributor.CrowdinRemote
	service *distributor.Service
}

// loadConfig loads and validates configuration. Invalid settings are usage errors.
func loadConfig(needRemote bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, usageError(fmt.Errorf("failed to load config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError(fmt.Errorf("invalid config: %w", err))
	}
	if needRemote {
		if err := cfg.ValidateRemote(); err != nil {
			return nil, usageError(fmt.Errorf("invalid config: %w", err))
		}
	}
	return cfg, nil
}

// newApp loads configuration and wires the distributor service.
func newApp(needRemote bool) (*app, error) {
	cfg, err := loadConfig(needRemote)
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg, needRemote)
}

func newAppFromConfig(cfg *config.Config, needRemote bool) (*app, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, usageError(fmt.Errorf("failed to initialize logger: %w", err))
	}

	store, err := openLedger(cfg)
	if err != nil {
		return nil, err
	}
	publisher, err := openPublisher(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: l}
	opts := distributor.Options{
		FS:        afero.NewOsFs(),
		Ledger:    store,
		Publisher: publisher,
		Resources: cfg.Resources,
		Sync:      cfg.Sync,
		Publish:   cfg.Publish,
		Logger:    l,
	}
	if needRemote {
		a.client = crowdin.New(cfg.Crowdin)
		a.remote = distributor.NewCrowdinRemote(a.client, cfg.Crowdin.BasePath)
		l.Debug("Using Crowdin project",
			zap.Int64("project_id", a.client.ProjectID()),
			zap.String("base_path", cfg.Crowdin.BasePath))
		if ttl := cfg.Sync.StateCacheTTL(); ttl > 0 {
			opts.Remote = reconcile.NewCachedRemote(a.remote, ttl)
		} else {
			opts.Remote = a.remote
		}
	}
	a.service = distributor.NewService(opts)
	return a, nil
}

// openLedger connects the configured ledger backend.
func openLedger(cfg *config.Config) (ledger.Store, error) {
	deps := ledger.Deps{FS: afero.NewOsFs(), Bucket: cfg.Storage.Bucket}

	switch cfg.Ledger.Backend {
	case ledger.BackendS3:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		deps.Storage = client
	case ledger.BackendDatabase:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
	}

	return ledger.New(cfg.Ledger, deps)
}

// openPublisher returns the configured publisher, or nil when publishing is off.
func openPublisher(cfg *config.Config) (publish.Publisher, error) {
	if !cfg.Publish.Enabled {
		return nil, nil
	}
	switch cfg.Publish.Target {
	case publish.TargetS3:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		return publish.NewArchivePublisher(client, cfg.Storage.Bucket, cfg.Publish.ArchivePrefix), nil
	default:
		p, err := publish.NewArtifactoryPublisher(cfg.Publish)
		if err != nil {
			return nil, usageError(err)
		}
		return p, nil
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
