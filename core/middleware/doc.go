// Package middleware groups the HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the ones listed
//     in Config.Skip (the Prometheus endpoint).
//   - rayid: assigns each request a ray id, stores it in the Fiber locals for
//     logger.WithRayID and echoes it in the X-Ray-ID response header.
//
// Register rayid first so every log line of a request is correlated.
package middleware
