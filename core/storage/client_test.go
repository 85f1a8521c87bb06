package storage_test

import (
	"errors"
	"testing"

	"travel-ops/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, storage.IsNotFound(nil))
	assert.False(t, storage.IsNotFound(errors.New("connection refused")))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, storage.IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}
