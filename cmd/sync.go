package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"crowdin-distributor/feature/distributor"

	"github.com/spf13/cobra"
)

var (
	publishFlag   bool
	noPublishFlag bool
	jsonFlag      bool
)

// syncCmd runs one reconciliation pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile local resource files with the Crowdin project",
	Long: `Runs one reconciliation pass: scans the local resource files, uploads new and
changed source strings, downloads translations whose completion grew since the
last pass and, when everything converged, publishes the translation bundle.

Exit status is 0 when the pass converged, 1 when it did not and 2 on
configuration errors.

Examples:
  # Reconcile without publishing
  sync --no-publish

  # Reconcile and publish regardless of publish.enabled
  sync --publish

  # Print the full report as JSON
  sync --json`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&publishFlag, "publish", false, "Publish the bundle after a converged pass (overrides publish.enabled)")
	syncCmd.Flags().BoolVar(&noPublishFlag, "no-publish", false, "Never publish, even if publish.enabled is set")
	syncCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the pass report as JSON")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if publishFlag && noPublishFlag {
		return usageError(errors.New("--publish and --no-publish are mutually exclusive"))
	}
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	switch {
	case publishFlag:
		cfg.Publish.Enabled = true
	case noPublishFlag:
		cfg.Publish.Enabled = false
	}

	a, err := newAppFromConfig(cfg, true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	report := a.service.Run(ctx)
	if err := printReport(cmd.OutOrStdout(), report, jsonFlag); err != nil {
		return err
	}
	if !report.Converged() {
		return notConverged()
	}
	return nil
}

// printReport writes a human readable (or JSON) summary of a pass.
func printReport(w io.Writer, report *distributor.Report, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	out := report.Outcome
	fmt.Fprintln(w, "=== Reconciliation Report ===")
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Status: %s\n", out.Status)
	if out.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", out.Error)
	}
	if p := report.Plan; p != nil {
		fmt.Fprintf(w, "Files: %d\n", p.Files)
		fmt.Fprintf(w, "Uploads: %d new, %d changed\n", p.UploadNew, p.UploadChanged)
		fmt.Fprintf(w, "Downloads: %d\n", p.Downloads)
		fmt.Fprintf(w, "Unchanged: %d\n", p.NoOps)
	}
	fmt.Fprintf(w, "Orphans: %d\n", len(out.Orphans))
	fmt.Fprintf(w, "Duration: %s\n", out.FinishedAt.Sub(out.StartedAt))
	if report.LedgerError != "" {
		fmt.Fprintf(w, "Ledger: %s\n", report.LedgerError)
	}

	if !report.Decision.MayPublish {
		fmt.Fprintln(w)
		return report.Decision.WriteReport(w)
	}
	switch {
	case report.Published != "":
		fmt.Fprintf(w, "Published: %s\n", report.Published)
	case report.PublishError != "":
		fmt.Fprintf(w, "Publish failed: %s\n", report.PublishError)
	}
	return nil
}
