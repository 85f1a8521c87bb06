package checks

import (
	"context"
	"fmt"

	"travel-ops/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport is the result of the storage check.
type StorageReport struct {
	Bucket          string `json:"bucket"`
	BucketExists    bool   `json:"bucket_exists"`
	SnapshotObject  string `json:"snapshot_object"`
	SnapshotPresent bool   `json:"snapshot_present"`
	SnapshotSize    int64  `json:"snapshot_size"`
}

// OK reports whether nothing is missing.
func (r StorageReport) OK() bool {
	return r.BucketExists && r.SnapshotPresent
}

// CheckStorage verifies the bucket and the snapshot object.
func CheckStorage(ctx context.Context, client storage.Client, bucket, object string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket, SnapshotObject: object}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		return report, nil
	}

	info, err := client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return report, nil
		}
		return nil, fmt.Errorf("failed to stat snapshot object: %w", err)
	}
	report.SnapshotPresent = true
	report.SnapshotSize = info.Size
	return report, nil
}

// FixStorage creates the bucket when it is missing. The snapshot object is
// written by the snapshot manager on its first load.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}
