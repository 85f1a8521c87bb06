package departures

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-ops/core/metrics"
	"travel-ops/core/reconcile"
	"travel-ops/feature/departures/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Package statuses.
const (
	PackageDraft     = "draft"
	PackagePublished = "published"
)

// Package is the API view of a package with its departures in flight order.
type Package struct {
	ID         string                    `json:"id"`
	Status     string                    `json:"status"`
	Flights    []reconcile.FlightSegment `json:"flights"`
	Departures []reconcile.Departure     `json:"departures"`
}

// Service handles package and departure operations.
type Service struct {
	repo    *Repository
	engine  *reconcile.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewService creates a new departures service.
func NewService(db *gorm.DB, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    NewRepository(db),
		engine:  reconcile.NewEngine(),
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// AutoMigrate creates the departure tables.
func (s *Service) AutoMigrate(ctx context.Context) error {
	return s.repo.AutoMigrate(ctx)
}

// CreatePackage stores a package and one departure per flight segment.
func (s *Service) CreatePackage(ctx context.Context, status string, flights []reconcile.FlightSegment) (*Package, error) {
	if status == "" {
		status = PackageDraft
	}
	if status != PackageDraft && status != PackagePublished {
		return nil, fmt.Errorf("%w: package status %q", ErrInvalidStatus, status)
	}
	if err := validateFlights(flights); err != nil {
		return nil, err
	}

	row := &models.Package{ID: s.newID(), Status: status, Flights: flights}
	plan := s.engine.Reconcile(nil, flights, nil)

	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		if err := tx.CreatePackage(ctx, row); err != nil {
			return err
		}
		_, err := reconcile.ApplyPlan(ctx, tx.Mutator(row.ID, plan.Departures), plan, reconcile.Options{Confirmed: true})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record("create", plan)
	s.logger.Info("Package created",
		zap.String("package_id", row.ID),
		zap.Int("departures", len(plan.Departures)))

	return &Package{ID: row.ID, Status: row.Status, Flights: flights, Departures: nonNil(plan.Departures)}, nil
}

// GetPackage returns a package with departures and children.
func (s *Service) GetPackage(ctx context.Context, id string) (*Package, error) {
	row, err := s.repo.FindPackage(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return toPackage(row), nil
}

// UpdateFlights reconciles the package departures against flights.
//
// The plan is always returned. It is applied, together with the new flight
// list, only when opts.Confirmed is set and opts.DryRun is not. Deletions
// cascade to children; each one is logged at warn level.
func (s *Service) UpdateFlights(ctx context.Context, id string, flights []reconcile.FlightSegment, opts reconcile.Options) (*reconcile.Plan, error) {
	if err := validateFlights(flights); err != nil {
		return nil, err
	}
	start := s.now()
	apply := opts.Confirmed && !opts.DryRun

	var plan *reconcile.Plan
	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		row, err := tx.FindPackage(ctx, id, apply)
		if err != nil {
			return err
		}

		current := make([]reconcile.Departure, 0, len(row.Departures))
		for _, d := range row.Departures {
			current = append(current, d.ToDomain())
		}
		plan = s.engine.Reconcile(row.Flights, flights, current)

		if !apply {
			return nil
		}
		if _, err := reconcile.ApplyPlan(ctx, tx.Mutator(id, plan.Departures), plan, opts); err != nil {
			return err
		}
		return tx.SavePackageFlights(ctx, id, flights)
	})
	if err != nil {
		return nil, err
	}

	l := s.logger.With(zap.String("package_id", id), zap.Bool("dry_run", !apply))
	l.Info("Flight reconciliation planned",
		zap.Bool("changed", plan.Changed),
		zap.Int("created", plan.Summary.Created),
		zap.Int("updated", plan.Summary.Updated),
		zap.Int("deleted", plan.Summary.Deleted))

	if apply {
		for _, a := range plan.Actions {
			if a.Type != reconcile.ActionDelete {
				continue
			}
			l.Warn("Departure deleted",
				zap.String("departure_id", a.DepartureID),
				zap.String("flight_label", a.Departure.FlightLabel),
				zap.Int("supplier_links", len(a.Departure.SupplierLinks)),
				zap.Int("cost_lines", len(a.Departure.CostLines)),
				zap.Int("timeline_items", len(a.Departure.TimelineItems)))
		}
		s.record("update", plan)
		s.metrics.ReconcileTime.Observe(s.now().Sub(start).Seconds())
	}

	return plan, nil
}

// SetDepartureStatus moves a departure to status. Entering validated stamps
// the validation date; clearValidation resets it.
func (s *Service) SetDepartureStatus(ctx context.Context, id string, status reconcile.Status, clearValidation bool) (*reconcile.Departure, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	row, err := s.repo.FindDeparture(ctx, id)
	if err != nil {
		return nil, err
	}

	d := row.ToDomain()
	d.SetStatus(status, s.now().UTC(), clearValidation)
	row.Status = string(d.Status)
	row.ValidationDate = d.ValidationDate

	if err := s.repo.SaveDepartureStatus(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("Departure status changed",
		zap.String("departure_id", id),
		zap.String("status", string(d.Status)))
	return &d, nil
}

// ListDepartures returns all departures ordered by departure date.
func (s *Service) ListDepartures(ctx context.Context) ([]reconcile.Departure, error) {
	rows, err := s.repo.ListDepartures(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.Departure, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

// AddSupplierLink attaches a supplier to a departure.
func (s *Service) AddSupplierLink(ctx context.Context, departureID string, link reconcile.SupplierLink) (*reconcile.SupplierLink, error) {
	if strings.TrimSpace(link.Name) == "" {
		return nil, fmt.Errorf("%w: supplier name is required", ErrInvalidInput)
	}
	if _, err := s.repo.FindDeparture(ctx, departureID); err != nil {
		return nil, err
	}

	link.ID = s.newID()
	link.DepartureID = departureID
	row := models.SupplierLinkFromDomain(departureID, link)
	if err := s.repo.CreateChild(ctx, &row); err != nil {
		return nil, err
	}
	return &link, nil
}

// AddCostLine attaches a payment step to a departure.
func (s *Service) AddCostLine(ctx context.Context, departureID string, line reconcile.CostLine) (*reconcile.CostLine, error) {
	if strings.TrimSpace(line.Label) == "" {
		return nil, fmt.Errorf("%w: cost label is required", ErrInvalidInput)
	}
	if _, err := s.repo.FindDeparture(ctx, departureID); err != nil {
		return nil, err
	}

	line.ID = s.newID()
	line.DepartureID = departureID
	row := models.CostLineFromDomain(departureID, line)
	if err := s.repo.CreateChild(ctx, &row); err != nil {
		return nil, err
	}
	return &line, nil
}

// AddTimelineItem appends an entry to a departure's timeline. Kind defaults to
// info and the date to now.
func (s *Service) AddTimelineItem(ctx context.Context, departureID string, item reconcile.TimelineItem) (*reconcile.TimelineItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, fmt.Errorf("%w: timeline title is required", ErrInvalidInput)
	}
	if item.Kind == "" {
		item.Kind = reconcile.KindInfo
	}
	if !item.Kind.Valid() {
		return nil, fmt.Errorf("%w: timeline kind %q", ErrInvalidInput, item.Kind)
	}
	if _, err := s.repo.FindDeparture(ctx, departureID); err != nil {
		return nil, err
	}

	if item.Date == nil {
		now := s.now().UTC()
		item.Date = &now
	}
	item.ID = s.newID()
	item.DepartureID = departureID
	row := models.TimelineItemFromDomain(departureID, item)
	if err := s.repo.CreateChild(ctx, &row); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) record(op string, plan *reconcile.Plan) {
	outcome := "unchanged"
	if plan.Changed {
		outcome = "changed"
	}
	s.metrics.Reconciliations.WithLabelValues("departures", outcome).Inc()
	s.metrics.DepartureActions.WithLabelValues("departures", string(reconcile.ActionCreate)).Add(float64(plan.Summary.Created))
	s.metrics.DepartureActions.WithLabelValues("departures", string(reconcile.ActionUpdate)).Add(float64(plan.Summary.Updated))
	s.metrics.DepartureActions.WithLabelValues("departures", string(reconcile.ActionDelete)).Add(float64(plan.Summary.Deleted))
	s.logger.Debug("Reconciliation recorded", zap.String("operation", op), zap.String("outcome", outcome))
}

// validateFlights checks that every non-empty date is a calendar date.
func validateFlights(flights []reconcile.FlightSegment) error {
	for i, f := range flights {
		if _, err := reconcile.ParseDate(f.DepartureDate); err != nil {
			return fmt.Errorf("%w: flight %d departure date: %v", ErrInvalidInput, i+1, err)
		}
		if _, err := reconcile.ParseDate(f.ReturnDate); err != nil {
			return fmt.Errorf("%w: flight %d return date: %v", ErrInvalidInput, i+1, err)
		}
	}
	return nil
}

func toPackage(row *models.Package) *Package {
	out := &Package{
		ID:         row.ID,
		Status:     row.Status,
		Flights:    row.Flights,
		Departures: make([]reconcile.Departure, 0, len(row.Departures)),
	}
	if out.Flights == nil {
		out.Flights = []reconcile.FlightSegment{}
	}
	for _, d := range row.Departures {
		out.Departures = append(out.Departures, d.ToDomain())
	}
	return out
}

func nonNil(d []reconcile.Departure) []reconcile.Departure {
	if d == nil {
		return []reconcile.Departure{}
	}
	return d
}
