package integrity

import (
	"context"
	"errors"

	"travel-ops/core/storage"
	"travel-ops/feature/integrity/checks"
	"travel-ops/feature/snapshot"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned when a check's dependency is not wired.
var ErrNotConfigured = errors.New("not configured")

// Options holds the dependencies of the integrity checks. Any of DB, Client
// and Backend may be nil; the matching check then reports ErrNotConfigured.
type Options struct {
	DB             *gorm.DB
	Client         storage.Client
	Bucket         string
	Region         string
	SnapshotObject string
	Backend        snapshot.Backend
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(opts Options, logger *zap.Logger) *Service {
	return &Service{
		opts:   opts,
		logger: logger,
	}
}

// CheckServer compares the departure tables with their models.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	if s.opts.DB == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckServerIntegrity(s.opts.DB)
}

// CheckStorage verifies the bucket and the snapshot object.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.opts.Client == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckStorage(ctx, s.opts.Client, s.opts.Bucket, s.opts.SnapshotObject)
}

// FixStorage creates the bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.opts.Client == nil {
		return ErrNotConfigured
	}
	return checks.FixStorage(ctx, s.opts.Client, s.opts.Bucket, s.opts.Region, s.logger)
}

// CheckSnapshot reports whether the stored snapshot needs migrating.
func (s *Service) CheckSnapshot(ctx context.Context) (*checks.SnapshotReport, error) {
	if s.opts.Backend == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckSnapshot(ctx, s.opts.Backend)
}
