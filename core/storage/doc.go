// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface so the progress ledger
// and the bundle archive can keep their data in AWS S3 or a self-hosted MinIO
// instance, and so both can be tested against core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: see EnsureBucket.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - RemoveObject: Deletes a single object.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, "translations")
package storage
