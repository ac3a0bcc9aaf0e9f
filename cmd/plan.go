package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/feature/distributor"

	"github.com/spf13/cobra"
)

var (
	planDiffFlag bool
	planJSONFlag bool
)

// planCmd computes the plan of a pass without executing it.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a sync would do without changing anything",
	Long: `Scans the local resource files, fetches the Crowdin project state and prints
the planned uploads, downloads and orphaned keys. Nothing is uploaded, downloaded
or recorded.

Examples:
  # Summary and actions
  plan

  # Include unified diffs of changed source strings
  plan --diff`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planDiffFlag, "diff", false, "Print unified diffs of changed source strings")
	planCmd.Flags().BoolVar(&planJSONFlag, "json", false, "Print the plan as JSON")
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	snapshot, plan, _, err := a.service.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	var diffs []distributor.StringDiff
	if planDiffFlag {
		diffs, err = distributor.ChangedStrings(ctx, a.remote, snapshot, plan)
		if err != nil {
			return fmt.Errorf("failed to diff changed strings: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	if planJSONFlag {
		data, err := json.MarshalIndent(struct {
			Plan  *reconcile.Plan          `json:"plan"`
			Diffs []distributor.StringDiff `json:"diffs,omitempty"`
		}{plan, diffs}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	printPlan(w, plan, diffs)
	return nil
}

// printPlan writes the pending actions and orphans of plan. NoOps are counted only.
func printPlan(w io.Writer, plan *reconcile.Plan, diffs []distributor.StringDiff) {
	s := plan.Summary
	fmt.Fprintln(w, "=== Reconciliation Plan ===")
	fmt.Fprintf(w, "Files: %d\n", s.Files)
	fmt.Fprintf(w, "Uploads: %d new, %d changed\n", s.UploadNew, s.UploadChanged)
	fmt.Fprintf(w, "Downloads: %d\n", s.Downloads)
	fmt.Fprintf(w, "Unchanged: %d\n", s.NoOps)
	fmt.Fprintf(w, "Orphans: %d\n", s.Orphans)

	if plan.Pending() {
		fmt.Fprintln(w, "\nActions:")
		for _, a := range plan.Actions() {
			if a.Kind == reconcile.ActionNoOp {
				continue
			}
			fmt.Fprintf(w, "  %s\n", a)
		}
	}

	if len(plan.Orphans) > 0 {
		fmt.Fprintln(w, "\nOrphaned keys (kept remotely):")
		for _, o := range plan.Orphans {
			fmt.Fprintf(w, "  %s#%s\n", o.Path, o.Key)
		}
	}

	for _, d := range diffs {
		fmt.Fprintln(w)
		fmt.Fprint(w, d.Unified)
	}

	if !plan.Pending() {
		fmt.Fprintln(w, "\nNothing to do.")
	}
}
