package cmd

import (
	"fmt"
	"io"
	"sort"

	"crowdin-distributor/core/reconcile"

	"github.com/spf13/cobra"
)

// ledgerCmd groups operations on the observed-progress ledger.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or reset the observed translation progress",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last observed completion per file and locale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		store, err := openLedger(cfg)
		if err != nil {
			return err
		}
		observed, err := store.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}
		printObserved(cmd.OutOrStdout(), observed)
		return nil
	},
}

var ledgerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget observed progress so the next sync downloads every locale again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		store, err := openLedger(cfg)
		if err != nil {
			return err
		}
		if err := store.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset ledger: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ledger (%s) reset.\n", cfg.Ledger.Backend)
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerResetCmd)
	RootCmd.AddCommand(ledgerCmd)
}

func printObserved(w io.Writer, observed reconcile.Observed) {
	paths := make([]string, 0, len(observed))
	for p := range observed {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Fprintln(w, "=== Observed Progress ===")
	if len(paths) == 0 {
		fmt.Fprintln(w, "No progress recorded.")
		return
	}
	for _, p := range paths {
		locales := make([]string, 0, len(observed[p]))
		for l := range observed[p] {
			locales = append(locales, l)
		}
		sort.Strings(locales)
		for _, l := range locales {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\n", p, l, observed[p][l])
		}
	}
}
