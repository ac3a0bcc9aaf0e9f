package cmd

import (
	"context"
	"fmt"
	"time"

	"crowdin-distributor/core/loader"
	"crowdin-distributor/core/logger"
	"crowdin-distributor/core/middleware/auth"
	"crowdin-distributor/core/middleware/rayid"
	"crowdin-distributor/feature/distributor"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the webhook server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Starts the HTTP server. A Crowdin webhook on POST /webhooks/crowdin triggers a
reconciliation pass; concurrent triggers share the pass in flight. The last
report is served on GET /runs/last.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.log.Sync()
	zap.ReplaceGlobals(a.log)

	// Passes outlive the request that triggered them and stop on shutdown
	base, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newServer(base, a)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()))
		errc <- app.Listen(a.cfg.Server.Addr())
	}()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server...")
	timeout := time.Duration(a.cfg.Server.ShutdownSeconds) * time.Second
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		a.log.Warn("Server shutdown incomplete", zap.Error(err))
	}
	a.service.Shutdown(timeout)
	return nil
}

// newServer builds the fiber app with middleware and features.
func newServer(base context.Context, a *app) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every later log line carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(a.log, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Webhooks authenticate with their own secret
	app.Use(auth.New(auth.Config{
		ApiKey: a.cfg.Server.ApiKey,
		Public: []string{"/health", "/webhooks/crowdin"},
	}))

	mgr := loader.NewManager(a.log)
	mgr.Register(distributor.NewFeature(base, a.service, a.cfg.Server.WebhookSecret))
	if err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return app, nil
}
