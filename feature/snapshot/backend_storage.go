package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"travel-ops/core/storage"

	"github.com/minio/minio-go/v7"
)

// StorageBackend keeps the snapshot as a single object in a MinIO/S3 bucket.
type StorageBackend struct {
	client storage.Client
	bucket string
	object string
}

// NewStorageBackend creates a backend for bucket/object.
func NewStorageBackend(client storage.Client, bucket, object string) *StorageBackend {
	return &StorageBackend{client: client, bucket: bucket, object: object}
}

func (b *StorageBackend) Load(ctx context.Context) ([]byte, bool, error) {
	if _, err := b.client.StatObject(ctx, b.bucket, b.object, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat snapshot %s: %w", b.object, err)
	}

	obj, err := b.client.GetObject(ctx, b.bucket, b.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot %s: %w", b.object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", b.object, err)
	}
	return data, true, nil
}

func (b *StorageBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot %s: %w", b.object, err)
	}
	return nil
}
