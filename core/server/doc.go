// Package server holds the HTTP server configuration.
//
// The cmd package starts Fiber with these settings. The API key, when set, is
// enforced by core/middleware.
package server
