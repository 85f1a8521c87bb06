package snapshot

import (
	"net/http/httptest"
	"testing"

	"travel-ops/core/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	assert.False(t, NewFeature(nil, zap.NewNop(), metrics.NewNop()).IsEnabled())

	backend := &memBackend{}
	feature := NewFeature(backend, zap.NewNop(), metrics.NewNop())
	assert.Equal(t, "snapshot", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NotNil(t, feature.Manager())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	// state is loaded lazily
	assert.Equal(t, int32(0), backend.loads.Load())

	resp, err := app.Test(httptest.NewRequest("GET", "/snapshot/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
