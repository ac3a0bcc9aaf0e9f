package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"not converged", notConverged(), 1},
		{"usage", usageError(errors.New("bad flag")), 2},
		{"wrapped usage", fmt.Errorf("running: %w", usageError(errors.New("bad"))), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "exit status 1", notConverged().Error())
	assert.Equal(t, "bad flag", usageError(errors.New("bad flag")).Error())
}

func TestLoadConfig_MissingRemoteSettingsIsUsageError(t *testing.T) {
	dir := t.TempDir()
	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })
	t.Setenv("CROWDIN_TOKEN", "")
	t.Setenv("CROWDIN_PROJECT_ID", "")
	t.Setenv("SYNC_LOCALES", "")

	_, err := loadConfig(true)
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Contains(t, err.Error(), "crowdin.token is not set")

	cfg, err := loadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Ledger.Backend)
}

func TestLoadConfig_BrokenFileIsUsageError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crowdin-distributor.yaml"), []byte("sync: [unterminated"), 0o644))
	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })

	_, err := loadConfig(false)
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sync", "plan", "validate", "serve", "bundle", "ledger"} {
		assert.True(t, names[want], want)
	}
}
