package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Header is the request header carrying the API key.
const Header = "X-API-Key"

// Config configures the auth middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
	// Skip lists path prefixes served without a key.
	Skip []string
}

// New returns a middleware rejecting requests without a valid API key.
// The key is read from X-API-Key or an "Authorization: Bearer" header.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		for _, prefix := range cfg.Skip {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		key := c.Get(Header)
		if key == "" {
			key = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
