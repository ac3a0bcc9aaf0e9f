package ledger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectStore keeps the ledger as a YAML object in a bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
	key    string
	now    func() time.Time
}

// NewObjectStore returns a ledger stored at bucket/key.
func NewObjectStore(client storage.Client, bucket, key string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, key: key, now: time.Now}
}

func (o *ObjectStore) Load(ctx context.Context) (reconcile.Observed, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return reconcile.Observed{}, nil
		}
		return nil, fmt.Errorf("opening ledger object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio reports a missing key lazily, on first read
		if storage.IsNotFound(err) {
			return reconcile.Observed{}, nil
		}
		return nil, fmt.Errorf("reading ledger object: %w", err)
	}
	return decode(data)
}

func (o *ObjectStore) Save(ctx context.Context, observed reconcile.Observed) error {
	if err := storage.EnsureBucket(ctx, o.client, o.bucket); err != nil {
		return err
	}
	data, err := encode(observed, o.now())
	if err != nil {
		return err
	}
	_, err = o.client.PutObject(ctx, o.bucket, o.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/yaml",
	})
	if err != nil {
		return fmt.Errorf("writing ledger object: %w", err)
	}
	return nil
}

func (o *ObjectStore) Reset(ctx context.Context) error {
	err := o.client.RemoveObject(ctx, o.bucket, o.key, minio.RemoveObjectOptions{})
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("removing ledger object: %w", err)
	}
	return nil
}
