package departures

import (
	"context"

	"travel-ops/core/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the departures feature. It is disabled without a database.
func NewFeature(db *gorm.DB, logger *zap.Logger, m *metrics.Metrics) *Feature {
	if db == nil {
		return &Feature{}
	}
	svc := NewService(db, logger, m)
	return &Feature{service: svc, handler: NewHandler(svc), enabled: true}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "departures"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load migrates the departure tables and registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.AutoMigrate(context.Background()); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the feature's service to CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}
