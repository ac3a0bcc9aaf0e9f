package publish

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"crowdin-distributor/core/storage"

	"github.com/minio/minio-go/v7"
)

// ArchivePublisher stores artifacts in an object storage bucket.
type ArchivePublisher struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchivePublisher returns a publisher writing to bucket under prefix.
func NewArchivePublisher(client storage.Client, bucket, prefix string) *ArchivePublisher {
	return &ArchivePublisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads the artifact and returns its s3:// location.
func (p *ArchivePublisher) Publish(ctx context.Context, a Artifact) (string, error) {
	if err := storage.EnsureBucket(ctx, p.client, p.bucket); err != nil {
		return "", err
	}
	key := path.Join(p.prefix, a.Coordinates.Path(a.Classifier, a.ext()))
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(a.Content), int64(len(a.Content)), minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
