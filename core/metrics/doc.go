// Package metrics defines the Prometheus metrics of the service.
//
// Metrics are registered on an explicit registry so that tests and CLI
// commands can build as many instances as they like. The HTTP server mounts
// Handler (through Fiber's net/http adaptor) at Config.Path.
package metrics
