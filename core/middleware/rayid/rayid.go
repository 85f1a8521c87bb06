package rayid

import (
	"travel-ops/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Ray-ID"

// New returns a middleware that assigns every request a ray id. An incoming
// X-Ray-ID header is reused so callers can correlate across services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(logger.RayIDKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
