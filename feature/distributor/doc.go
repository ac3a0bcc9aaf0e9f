// Package distributor wires one full translation distribution pass.
//
// A pass scans the local source files, reconciles them with the Crowdin project,
// writes validated translations to the output tree, records observed progress
// in the ledger and asks the publish gate whether the bundle may ship.
//
// # Components
//
//   - CrowdinRemote: adapts the Crowdin client to reconcile.Remote. Remote file
//     paths are mapped below the configured base path; missing directories are
//     created on upload.
//   - FileSink: validates downloaded translations against their source strings
//     and writes them following the output pattern.
//   - Service: runs passes. Concurrent triggers share the pass in flight.
//   - Bundler: the project-build flow. Exports every translation as one zip,
//     adds the source files and validates each entry.
//   - Handler: webhook and run report endpoints.
//
// # HTTP Endpoints
//
//   - POST /webhooks/crowdin : Start a pass (?wait=true returns the report).
//   - GET /runs/last : Report of the most recent pass.
//   - GET /health : Liveness.
package distributor
