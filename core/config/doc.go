// Package config provides configuration management for crowdin-distributor.
//
// It utilizes Viper for loading configuration from an optional
// crowdin-distributor.yaml file, a .env file and environment variables.
// Defaults live next to each setting as `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Crowdin: API base URL, token, project id, base path
//   - Sync: target locales, concurrency, retry policy, state cache
//   - Resources: source root, file patterns, translation output layout
//   - Ledger: where observed progress is kept (memory, file, s3, database)
//   - Publish: Artifactory or S3 bundle publishing
//   - Server: HTTP server settings (port, API key, webhook secret)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Database: MySQL or SQLite connection details
//   - Log: Logging level and format
//
// Environment variables map to nested keys with underscores, e.g.
// CROWDIN_TOKEN -> crowdin.token, SYNC_LOCALES=de,fr -> sync.locales.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
