package cmd

import (
	"errors"
	"fmt"
	"os"

	"crowdin-distributor/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK           = 0
	exitNotConverged = 1
	exitUsage        = 2
)

// exitError carries the process exit code of a failed command. A nil err exits
// silently; the command already reported why.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

func notConverged() error {
	return &exitError{code: exitNotConverged}
}

var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "crowdin-distributor",
	Short: "Crowdin translation distributor",
	Long: `Crowdin Distributor keeps a Crowdin project in sync with local resource files.
It uploads new and changed source strings, downloads translations whose
completion grew and publishes the translation bundle once everything converged.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return exitNotConverged
}

func Execute() {
	err := RootCmd.Execute()
	code := exitCode(err)
	if code == exitOK {
		return
	}

	var exit *exitError
	if !errors.As(err, &exit) || exit.err != nil {
		// Console encoding with ISO8601 timestamps reads better on a terminal
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(code)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and crowdin-distributor.{yaml,toml,json}")
	RootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})
}
