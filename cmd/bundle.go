package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"crowdin-distributor/core/publish"
	"crowdin-distributor/core/resource"
	"crowdin-distributor/feature/distributor"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bundleOutput      string
	bundlePoll        time.Duration
	bundlePublishFlag bool
)

// bundleCmd exports the whole project as one validated zip.
var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Build, validate and optionally publish a project-wide translation bundle",
	Long: `Runs a reconciliation pass and, once it converged, asks Crowdin for a
project-wide translation build. The downloaded zip is patched with the local
source files and every translation in it is validated against its source
before it is written to --output and, with --publish, handed to the publisher.`,
	Args: cobra.NoArgs,
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundleOutput, "output", "o", "build/translations-bundle.zip", "Where to write the bundle")
	bundleCmd.Flags().DurationVar(&bundlePoll, "poll", 2*time.Second, "Interval between build status checks")
	bundleCmd.Flags().BoolVar(&bundlePublishFlag, "publish", false, "Publish the bundle (overrides publish.enabled)")
	RootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if bundlePublishFlag {
		cfg.Publish.Enabled = true
	}
	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}

	// The pass itself must not publish the per-locale output
	runCfg := *cfg
	runCfg.Publish.Enabled = false
	a, err := newAppFromConfig(&runCfg, true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	w := cmd.OutOrStdout()
	report := a.service.Run(ctx)
	if !report.Decision.MayPublish {
		if err := printReport(w, report, false); err != nil {
			return err
		}
		return notConverged()
	}

	snapshot, err := a.service.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan resources: %w", err)
	}
	registry := resource.DefaultRegistry()
	bundler := distributor.NewBundler(a.client, registry, cfg.Crowdin.BasePath, cfg.Sync.Policy(), bundlePoll, nil, a.log)
	data, err := bundler.Build(ctx, snapshot)
	if err != nil {
		if data == nil {
			return fmt.Errorf("failed to build bundle: %w", err)
		}
		fmt.Fprintln(w, "=== Bundle Validation ===")
		fmt.Fprintln(w, err)
		return notConverged()
	}

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(filepath.Dir(bundleOutput), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(fs, bundleOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	a.log.Info("Bundle written", zap.String("file", bundleOutput), zap.Int("bytes", len(data)))
	fmt.Fprintf(w, "Bundle: %s (%d bytes)\n", bundleOutput, len(data))

	if publisher == nil {
		return nil
	}
	coords, err := publish.ResolveCoordinates(fs, cfg.Publish)
	if err != nil {
		return err
	}
	location, err := publish.Gated(ctx, report.Decision, publisher, publish.Artifact{
		Coordinates: coords,
		Classifier:  cfg.Publish.Classifier,
		Content:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish bundle: %w", err)
	}
	fmt.Fprintf(w, "Published: %s\n", location)
	return nil
}
