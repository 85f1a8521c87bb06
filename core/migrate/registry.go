package migrate

import "travel-ops/core/utils"

// Migration upgrades a snapshot by exactly one schema version.
// Up must be total: it returns its input when the expected shape is absent.
type Migration struct {
	Name string
	Up   func(State) State
}

// Registry is the ordered list of migrations. Entry v upgrades version v to v+1.
type Registry struct {
	migrations []Migration
}

// NewRegistry creates a registry from migrations in version order.
func NewRegistry(migrations ...Migration) *Registry {
	return &Registry{migrations: migrations}
}

var defaultRegistry = NewRegistry(
	Migration{Name: "ops-status", Up: migrateOpsStatus},
	Migration{Name: "booking-departure-group", Up: migrateBookings},
	Migration{Name: "group-collections", Up: migrateGroupCollections},
)

// Default returns the application's migration registry.
func Default() *Registry {
	return defaultRegistry
}

// CurrentSchemaVersion is the version produced by the default registry.
func CurrentSchemaVersion() int {
	return defaultRegistry.CurrentVersion()
}

// CurrentVersion returns the number of registered migrations.
func (r *Registry) CurrentVersion() int {
	return len(r.migrations)
}

// Report describes a Migrate run.
type Report struct {
	From    int      `json:"from"`
	To      int      `json:"to"`
	Applied []string `json:"applied"`
}

// Migrate upgrades state to the current version. The input is not modified.
func (r *Registry) Migrate(state State) State {
	next, _ := r.MigrateWithReport(state)
	return next
}

// MigrateWithReport upgrades state and reports which migrations ran.
func (r *Registry) MigrateWithReport(state State) (State, Report) {
	next := state.Clone()
	start := next.Version()
	report := Report{From: start, Applied: []string{}}

	for v := start; v < len(r.migrations); v++ {
		m := r.migrations[v]
		if m.Up != nil {
			if migrated := m.Up(next); migrated != nil {
				next = migrated
			}
		}
		next[VersionKey] = v + 1
		report.Applied = append(report.Applied, m.Name)
	}

	current := r.CurrentVersion()
	if v, ok := utils.NonNegativeInt(next[VersionKey]); !ok || v < current {
		next[VersionKey] = current
	}

	report.To = next.Version()
	return next, report
}
