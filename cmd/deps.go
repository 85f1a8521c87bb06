package cmd

import (
	"context"
	"fmt"

	"travel-ops/core/config"
	"travel-ops/core/database"
	"travel-ops/core/logger"
	"travel-ops/core/storage"
	"travel-ops/feature/snapshot"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps bundles what a command needs. DB is nil when the connection failed and
// the command tolerates it.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   storage.Client
	backend snapshot.Backend
	closers []func(context.Context) error
}

// loadDeps loads configuration and connects to the stores. A database error
// is fatal only when requireDB is set.
func loadDeps(ctx context.Context, requireDB bool) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	d := &deps{cfg: cfg, logger: l}

	if conn, err := database.Connect(cfg.Database); err != nil {
		if requireDB {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		l.Warn("Optional database connection failed", zap.Error(err))
	} else {
		d.db = conn
		l.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	d.store = store

	backend, closer, err := snapshot.NewBackend(ctx, cfg.Snapshot, store, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot backend: %w", err)
	}
	d.backend = backend
	d.closers = append(d.closers, closer)

	return d, nil
}

func (d *deps) Close(ctx context.Context) {
	for _, c := range d.closers {
		if err := c(ctx); err != nil {
			d.logger.Warn("Failed to close backend", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}
