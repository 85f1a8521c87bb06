package server

import (
	"strings"
	"time"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownSeconds bounds graceful shutdown.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// Address returns the listen address for Fiber.
func (c Config) Address() string {
	port := strings.TrimPrefix(c.Port, ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
