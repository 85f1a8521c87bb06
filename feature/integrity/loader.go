package integrity

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new integrity feature.
func NewFeature(opts Options, logger *zap.Logger) *Feature {
	svc := NewService(opts, logger)
	return &Feature{
		service: svc,
		handler: NewHandler(svc),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the checks to CLI commands.
func (f *Feature) Service() *Service {
	return f.service
}
