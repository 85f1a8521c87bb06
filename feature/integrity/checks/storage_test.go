package checks

import (
	"context"
	"testing"

	"travel-ops/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBucket = "test-bucket"
	testObject = "state/snapshot.json"
)

func TestCheckStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Healthy", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, testBucket).Return(true, nil)
		client.On("StatObject", mock.Anything, testBucket, testObject, mock.Anything).
			Return(minio.ObjectInfo{Key: testObject, Size: 42}, nil)

		report, err := CheckStorage(ctx, client, testBucket, testObject)
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, int64(42), report.SnapshotSize)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, testBucket).Return(false, nil)

		report, err := CheckStorage(ctx, client, testBucket, testObject)
		require.NoError(t, err)
		assert.False(t, report.BucketExists)
		assert.False(t, report.SnapshotPresent)
		client.AssertNotCalled(t, "StatObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingSnapshot", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, testBucket).Return(true, nil)
		client.On("StatObject", mock.Anything, testBucket, testObject, mock.Anything).
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

		report, err := CheckStorage(ctx, client, testBucket, testObject)
		require.NoError(t, err)
		assert.True(t, report.BucketExists)
		assert.False(t, report.SnapshotPresent)
		assert.False(t, report.OK())
	})

	t.Run("StatError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, testBucket).Return(true, nil)
		client.On("StatObject", mock.Anything, testBucket, testObject, mock.Anything).
			Return(minio.ObjectInfo{}, assert.AnError)

		_, err := CheckStorage(ctx, client, testBucket, testObject)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("BucketError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, testBucket).Return(false, assert.AnError)

		_, err := CheckStorage(ctx, client, testBucket, testObject)
		assert.Error(t, err)
	})
}

func TestFixStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("MakeBucket", mock.Anything, testBucket, minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

	err := FixStorage(context.Background(), client, testBucket, "eu-west-1", zap.NewNop())
	assert.NoError(t, err)
	client.AssertExpectations(t)

	failing := new(mocks.Client)
	failing.On("MakeBucket", mock.Anything, testBucket, mock.Anything).Return(assert.AnError)
	assert.Error(t, FixStorage(context.Background(), failing, testBucket, "", zap.NewNop()))
}
