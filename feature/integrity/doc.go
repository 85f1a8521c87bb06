// Package integrity reports on the health of the service's backing stores.
//
// # Checks Provided
//
//   - Server: the departure tables' columns and types against the gorm models.
//   - Storage: the snapshot bucket exists and holds the snapshot object.
//   - Snapshot: the stored schema version against the current migration registry.
//
// A check whose dependency is not configured (no database, no storage client)
// answers 503 on its own route and is reported as "skipped" by GET /integrity.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/server : Runs the schema check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/snapshot : Runs the snapshot version check.
package integrity
