package snapshot

import (
	"travel-ops/core/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	manager *Manager
	handler *Handler
}

// NewFeature creates the snapshot feature over backend.
func NewFeature(backend Backend, logger *zap.Logger, m *metrics.Metrics) *Feature {
	mgr := NewManager(backend, logger, m)
	return &Feature{manager: mgr, handler: NewHandler(mgr)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "snapshot"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.manager.backend != nil
}

// Load registers the feature's routes. The state itself is loaded lazily on
// the first request so a slow backend does not block startup.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Manager exposes the state container to CLI commands.
func (f *Feature) Manager() *Manager {
	return f.manager
}
