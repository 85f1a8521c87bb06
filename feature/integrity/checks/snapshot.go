package checks

import (
	"context"

	"travel-ops/core/migrate"
	"travel-ops/feature/snapshot"
)

// SnapshotReport compares the stored schema version with the current one.
type SnapshotReport struct {
	Present        bool `json:"present"`
	SchemaVersion  int  `json:"schema_version"`
	CurrentVersion int  `json:"current_version"`
	UpToDate       bool `json:"up_to_date"`
}

// CheckSnapshot reads the raw blob without migrating it.
func CheckSnapshot(ctx context.Context, backend snapshot.Backend) (*SnapshotReport, error) {
	report := &SnapshotReport{CurrentVersion: migrate.CurrentSchemaVersion()}

	data, found, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return report, nil
	}

	state, err := migrate.Decode(data)
	if err != nil {
		return nil, err
	}
	report.Present = true
	report.SchemaVersion = state.Version()
	report.UpToDate = report.SchemaVersion >= report.CurrentVersion
	return report, nil
}
