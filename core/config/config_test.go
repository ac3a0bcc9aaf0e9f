package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.crowdin.com/api/v2", cfg.Crowdin.BaseURL)
	assert.Equal(t, 10, cfg.Crowdin.RateLimitRetries)
	assert.Equal(t, 4, cfg.Sync.Concurrency)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.InDelta(t, 0.2, cfg.Sync.Jitter, 1e-9)
	assert.Empty(t, cfg.Sync.Locales)
	assert.Equal(t, "memory", cfg.Ledger.Backend)
	assert.Equal(t, []string{"*.properties", "*.json", "*.yml", "*.yaml", "*.toml", "*.po"}, cfg.Resources.Patterns)
	assert.Equal(t, "libs-release-local", cfg.Publish.ReleaseRepository)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CROWDIN_TOKEN", "tok")
	t.Setenv("CROWDIN_PROJECT_ID", "42")
	t.Setenv("SYNC_LOCALES", "de,pt-br")
	t.Setenv("SYNC_CONCURRENCY", "8")
	t.Setenv("LEDGER_BACKEND", "file")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Crowdin.Token)
	assert.Equal(t, int64(42), cfg.Crowdin.ProjectID)
	assert.Equal(t, []string{"de", "pt-br"}, cfg.Sync.Locales)
	assert.Equal(t, 8, cfg.Sync.Concurrency)
	assert.Equal(t, "file", cfg.Ledger.Backend)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	// registers cleanup for the variable godotenv overwrites
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\n"), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crowdin-distributor.yaml"), []byte(`
crowdin:
  project_id: 7
sync:
  locales: [fr, de]
publish:
  enabled: true
  context_url: https://maven.example.org/artifactory
`), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Crowdin.ProjectID)
	assert.Equal(t, []string{"fr", "de"}, cfg.Sync.Locales)
	assert.True(t, cfg.Publish.Enabled)
	assert.Equal(t, "https://maven.example.org/artifactory", cfg.Publish.ContextURL)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crowdin-distributor.yaml"), []byte("sync: [oops"), 0o644))

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "reading config file")
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("Normalizes Locales", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Sync.Locales = []string{"pt-br", " de ", "DE", ""}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, []string{"pt-BR", "de"}, cfg.Sync.Locales)
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"Bad Locale", func(c *Config) { c.Sync.Locales = []string{"not a locale"} }, "is not a valid locale"},
		{"Zero Concurrency", func(c *Config) { c.Sync.Concurrency = 0 }, "sync.concurrency"},
		{"Zero Attempts", func(c *Config) { c.Sync.MaxAttempts = 0 }, "sync.max_attempts"},
		{"Jitter", func(c *Config) { c.Sync.Jitter = 2 }, "sync.jitter"},
		{"Ledger", func(c *Config) { c.Ledger.Backend = "redis" }, "ledger.backend"},
		{"Publish Target", func(c *Config) { c.Publish.Enabled = true; c.Publish.Target = "ftp" }, "publish.target"},
		{"Root", func(c *Config) { c.Resources.Root = "" }, "resources.root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateRemote(t *testing.T) {
	cfg := validConfig(t)
	err := cfg.ValidateRemote()
	assert.ErrorContains(t, err, "crowdin.token")
	assert.ErrorContains(t, err, "crowdin.project_id")
	assert.ErrorContains(t, err, "sync.locales")

	cfg.Crowdin.Token = "t"
	cfg.Crowdin.ProjectID = 1
	cfg.Sync.Locales = []string{"de"}
	assert.NoError(t, cfg.ValidateRemote())
}
