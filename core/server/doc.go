// Package server holds the HTTP server configuration used by the serve command.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key protecting the run
// endpoints, the optional webhook secret and the graceful shutdown budget.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/serve.go when the
// Fiber application is started.
package server
