// Package migrate upgrades persisted application snapshots to the current schema.
//
// A snapshot is an arbitrary JSON object tagged with an integer "schemaVersion".
// The Registry is an ordered list of pure migrations, one per version increment,
// and CurrentSchemaVersion is its length. Migrate walks a snapshot from its
// stored version to the current one.
//
// Migrations never fail: when the structure they expect is absent (missing key,
// wrong type, partially written data) they pass the snapshot through untouched.
// A snapshot at or ahead of the current version is returned as is.
//
// # Aliases
//
// Legacy snapshots spelled the same value or field in several ways. The alias
// resolver maps the known spellings onto canonical ones and falls through to a
// documented default; unknown spellings are never guessed.
//
// # Usage
//
//	state, err := migrate.Decode(blob)
//	state = migrate.Default().Migrate(state)
package migrate
