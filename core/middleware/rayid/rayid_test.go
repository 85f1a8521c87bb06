package rayid

import (
	"net/http/httptest"
	"testing"

	"travel-ops/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(logger.RayIDKey).(string))
	})

	t.Run("Generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)

		rid := resp.Header.Get(Header)
		_, parseErr := uuid.Parse(rid)
		assert.NoError(t, parseErr)
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(Header, "upstream-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "upstream-1", resp.Header.Get(Header))
	})
}
