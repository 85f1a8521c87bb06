package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travel-ops/core/metrics"
	"travel-ops/core/migrate"
	"travel-ops/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Listener is notified with the new state after every load and update. It
// runs on the writer goroutine and must not call Update.
type Listener func(migrate.State)

// Status describes the in-memory snapshot.
type Status struct {
	Loaded         bool           `json:"loaded"`
	SchemaVersion  int            `json:"schema_version"`
	CurrentVersion int            `json:"current_version"`
	LastMigration  migrate.Report `json:"last_migration"`
	Packages       int            `json:"packages"`
	Bookings       int            `json:"bookings"`
}

// Manager is the single-writer container of the application state.
//
// Load reads the blob, migrates it to the current schema and writes it back
// when the version moved. Every mutation goes through Update, which holds the
// writer lock for the read-modify-persist cycle, so no two mutations overlap.
type Manager struct {
	backend  Backend
	registry *migrate.Registry
	engine   *reconcile.Engine
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	group singleflight.Group
	write sync.Mutex

	mu         sync.RWMutex
	state      migrate.State
	loaded     bool
	lastReport migrate.Report
	listeners  map[int]Listener
	nextID     int
}

// NewManager creates a manager over backend using the default migrations.
func NewManager(backend Backend, logger *zap.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		backend:   backend,
		registry:  migrate.Default(),
		engine:    reconcile.NewEngine(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function removing it.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Load rehydrates the state from the backend. Concurrent calls share one read.
func (m *Manager) Load(ctx context.Context) (migrate.State, error) {
	v, err, _ := m.group.Do("load", func() (any, error) {
		m.write.Lock()
		defer m.write.Unlock()
		return m.loadLocked(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(migrate.State), nil
}

func (m *Manager) loadLocked(ctx context.Context) (migrate.State, error) {
	data, found, err := m.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	raw := migrate.State{}
	if found {
		if raw, err = migrate.Decode(data); err != nil {
			return nil, err
		}
	}

	state, report := m.registry.MigrateWithReport(raw)
	if len(report.Applied) > 0 {
		for _, name := range report.Applied {
			m.metrics.Migrations.WithLabelValues(name).Inc()
		}
		if err := m.persist(ctx, state); err != nil {
			return nil, err
		}
		m.logger.Info("Snapshot migrated",
			zap.Int("from", report.From),
			zap.Int("to", report.To),
			zap.Strings("applied", report.Applied))
	}

	m.publish(state, &report)
	return state, nil
}

// State returns the current state, loading it on first use. Callers must not
// modify the returned value.
func (m *Manager) State(ctx context.Context) (migrate.State, error) {
	m.mu.RLock()
	state, loaded := m.state, m.loaded
	m.mu.RUnlock()
	if loaded {
		return state, nil
	}
	return m.Load(ctx)
}

// Update applies fn to the current state and persists the result. fn receives
// a shallow copy and must copy nested values before changing them. Returning
// an error aborts the update.
func (m *Manager) Update(ctx context.Context, fn func(migrate.State) (migrate.State, error)) (migrate.State, error) {
	if _, err := m.State(ctx); err != nil {
		return nil, err
	}

	m.write.Lock()
	defer m.write.Unlock()

	m.mu.RLock()
	current := m.state
	m.mu.RUnlock()

	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current, nil
	}
	if err := m.persist(ctx, next); err != nil {
		return nil, err
	}
	m.publish(next, nil)
	return next, nil
}

// PlanFlights returns the plan UpdateFlights would apply, without writing.
func (m *Manager) PlanFlights(ctx context.Context, packageID string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	_, plan, err := reconcileFlights(m.engine, state, packageID, flights)
	return plan, err
}

// UpdateFlights replaces a package's flight list and reconciles its ops groups.
func (m *Manager) UpdateFlights(ctx context.Context, packageID string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	var plan *reconcile.Plan
	_, err := m.Update(ctx, func(state migrate.State) (migrate.State, error) {
		next, p, err := reconcileFlights(m.engine, state, packageID, flights)
		plan = p
		return next, err
	})
	if err != nil {
		return nil, err
	}

	outcome := "unchanged"
	if plan.Changed {
		outcome = "changed"
	}
	m.metrics.Reconciliations.WithLabelValues("snapshot", outcome).Inc()
	for _, a := range plan.Actions {
		m.metrics.DepartureActions.WithLabelValues("snapshot", string(a.Type)).Inc()
		if a.Type == reconcile.ActionDelete {
			m.logger.Warn("Ops group deleted",
				zap.String("package_id", packageID),
				zap.String("group_id", a.DepartureID),
				zap.Int("children", a.Departure.ChildCount()))
		}
	}
	m.logger.Info("Snapshot flights reconciled",
		zap.String("package_id", packageID),
		zap.Bool("changed", plan.Changed),
		zap.Int("created", plan.Summary.Created),
		zap.Int("updated", plan.Summary.Updated),
		zap.Int("deleted", plan.Summary.Deleted))
	return plan, nil
}

// SetGroupStatus transitions one ops group and returns it.
func (m *Manager) SetGroupStatus(ctx context.Context, packageID, groupID string, status reconcile.Status, clearValidation bool) (map[string]any, error) {
	var group map[string]any
	_, err := m.Update(ctx, func(state migrate.State) (migrate.State, error) {
		next, g, err := setGroupStatus(state, packageID, groupID, status, clearValidation, m.now())
		group = g
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Status reports on the in-memory state without loading it.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Loaded:         m.loaded,
		CurrentVersion: m.registry.CurrentVersion(),
		LastMigration:  m.lastReport,
	}
	if m.loaded {
		s.SchemaVersion = m.state.Version()
		s.Packages = countSlice(m.state[migrate.KeyPackages])
		s.Bookings = countSlice(m.state[migrate.KeyBookings])
	}
	return s
}

func (m *Manager) persist(ctx context.Context, state migrate.State) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := m.backend.Save(ctx, data); err != nil {
		m.metrics.SnapshotWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	m.metrics.SnapshotWrites.WithLabelValues("ok").Inc()
	return nil
}

// publish swaps the state in and notifies listeners outside the lock.
func (m *Manager) publish(state migrate.State, report *migrate.Report) {
	m.mu.Lock()
	m.state = state
	m.loaded = true
	if report != nil {
		m.lastReport = *report
	}
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func countSlice(v any) int {
	s, _ := v.([]any)
	return len(s)
}
