// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Correlation
//
// Two helpers attach correlation fields:
//   - WithRayID extracts the RayID from a Fiber context, so all logs of one webhook request correlate.
//   - WithRun tags every log line of one reconciliation pass with its run_id (a UUID from NewRunID).
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	l := logger.WithRun(log, logger.NewRunID())
//	l.Info("Reconciliation pass started")
package logger
