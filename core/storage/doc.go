// Package storage wraps the MinIO Go client behind a small Client interface.
//
// The snapshot feature stores the versioned application state as a single
// JSON object through it, and the storage integrity check verifies the bucket
// and that object. Works against AWS S3 and self-hosted MinIO.
//
// core/storage/mocks provides a testify mock of Client.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
