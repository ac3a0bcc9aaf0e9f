package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/database"
	"crowdin-distributor/core/ledger"
	"crowdin-distributor/core/logger"
	"crowdin-distributor/core/publish"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"
	"crowdin-distributor/core/server"
	"crowdin-distributor/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Crowdin holds the API client configuration.
	Crowdin crowdin.Config `mapstructure:"crowdin"`
	// Sync holds reconciliation settings (locales, concurrency, retry).
	Sync reconcile.Config `mapstructure:"sync"`
	// Resources locates source files and translation output.
	Resources resource.Config `mapstructure:"resources"`
	// Ledger selects where observed progress is kept between passes.
	Ledger ledger.Config `mapstructure:"ledger"`
	// Publish holds Artifactory and bundle settings.
	Publish publish.Config `mapstructure:"publish"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// FileName is the optional configuration file looked up in the load path.
const FileName = "crowdin-distributor"

// LoadConfig loads configuration from an optional crowdin-distributor.{yaml,toml,json}
// file, a .env file and environment variables, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName(FileName)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_CONCURRENCY -> sync.concurrency)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks settings every command relies on and normalizes locales to
// their canonical BCP 47 form.
func (c *Config) Validate() error {
	var errs []error

	locales := make([]string, 0, len(c.Sync.Locales))
	seen := map[string]struct{}{}
	for _, raw := range c.Sync.Locales {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		tag, err := language.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync.locales: %q is not a valid locale", raw))
			continue
		}
		norm := tag.String()
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		locales = append(locales, norm)
	}
	c.Sync.Locales = locales

	if c.Sync.Concurrency <= 0 {
		errs = append(errs, errors.New("sync.concurrency must be positive"))
	}
	if c.Sync.MaxAttempts <= 0 {
		errs = append(errs, errors.New("sync.max_attempts must be positive"))
	}
	if c.Sync.Jitter < 0 || c.Sync.Jitter > 1 {
		errs = append(errs, errors.New("sync.jitter must be between 0 and 1"))
	}
	if !ledger.IsValidBackend(c.Ledger.Backend) {
		errs = append(errs, fmt.Errorf("ledger.backend: unknown backend %q", c.Ledger.Backend))
	}
	if c.Publish.Enabled && !publish.IsValidTarget(c.Publish.Target) {
		errs = append(errs, fmt.Errorf("publish.target: unknown target %q", c.Publish.Target))
	}
	if c.Resources.Root == "" {
		errs = append(errs, errors.New("resources.root is not set"))
	}

	return errors.Join(errs...)
}

// ValidateRemote checks the settings needed to talk to Crowdin.
func (c *Config) ValidateRemote() error {
	var errs []error
	if c.Crowdin.Token == "" {
		errs = append(errs, errors.New("crowdin.token is not set"))
	}
	if c.Crowdin.ProjectID <= 0 {
		errs = append(errs, errors.New("crowdin.project_id is not set"))
	}
	if len(c.Sync.Locales) == 0 {
		errs = append(errs, errors.New("sync.locales is empty"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
