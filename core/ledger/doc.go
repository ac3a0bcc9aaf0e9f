// Package ledger persists the last observed translation progress per file and
// locale between reconciliation passes.
//
// The engine schedules a download only when a file's completion increased since
// the last observation, so the ledger is what makes repeated passes idempotent.
// Four backends are available:
//
//   - memory: process lifetime only, the default for one-shot runs and serve mode
//   - file: a YAML document on the local filesystem
//   - s3: a YAML object in a MinIO/S3 bucket
//   - database: one row per file and locale, through GORM (MySQL or SQLite)
//
// # Usage
//
//	store, err := ledger.New(cfg.Ledger, ledger.Deps{FS: fs, Storage: client, Bucket: bucket, DB: db})
//	observed, err := store.Load(ctx)
//	// ... run a pass ...
//	err = store.Save(ctx, outcome.Observed)
package ledger
