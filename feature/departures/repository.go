package departures

import (
	"context"
	"errors"
	"fmt"

	"travel-ops/core/reconcile"
	"travel-ops/feature/departures/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists packages, departures and their children with GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates or updates the departure tables.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate departure tables: %w", err)
	}
	return nil
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.Preload("SupplierLinks").Preload("CostLines").Preload("TimelineItems")
}

// CreatePackage inserts the package row only. Departures go through a mutator.
func (r *Repository) CreatePackage(ctx context.Context, pkg *models.Package) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(pkg).Error; err != nil {
		return fmt.Errorf("failed to create package %s: %w", pkg.ID, err)
	}
	return nil
}

// FindPackage loads a package with its departures in flight order. When lock is
// set the package row is locked for the rest of the transaction.
func (r *Repository) FindPackage(ctx context.Context, id string, lock bool) (*models.Package, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var pkg models.Package
	err := q.Preload("Departures", func(db *gorm.DB) *gorm.DB {
		return withChildren(db).Order("position ASC")
	}).First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", id, err)
	}
	return &pkg, nil
}

// SavePackageFlights replaces the stored flight list of a package.
func (r *Repository) SavePackageFlights(ctx context.Context, id string, flights []reconcile.FlightSegment) error {
	pkg := models.Package{ID: id, Flights: flights}
	res := r.db.WithContext(ctx).Model(&pkg).Select("flights").Updates(&pkg)
	if res.Error != nil {
		return fmt.Errorf("failed to save flights of package %s: %w", id, res.Error)
	}
	return nil
}

// FindDeparture loads a departure with its children.
func (r *Repository) FindDeparture(ctx context.Context, id string) (*models.Departure, error) {
	var d models.Departure
	err := withChildren(r.db.WithContext(ctx)).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDepartureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load departure %s: %w", id, err)
	}
	return &d, nil
}

// ListDepartures returns every departure ordered by departure date.
func (r *Repository) ListDepartures(ctx context.Context) ([]models.Departure, error) {
	var rows []models.Departure
	err := withChildren(r.db.WithContext(ctx)).
		Order("departure_date ASC").Order("package_id ASC").Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list departures: %w", err)
	}
	return rows, nil
}

// SaveDepartureStatus writes status and validation date.
func (r *Repository) SaveDepartureStatus(ctx context.Context, d *models.Departure) error {
	err := r.db.WithContext(ctx).Model(&models.Departure{ID: d.ID}).
		Select("status", "validation_date").
		Updates(map[string]any{"status": d.Status, "validation_date": d.ValidationDate}).Error
	if err != nil {
		return fmt.Errorf("failed to save status of departure %s: %w", d.ID, err)
	}
	return nil
}

// CreateChild inserts a supplier link, cost line or timeline item.
func (r *Repository) CreateChild(ctx context.Context, child any) error {
	if err := r.db.WithContext(ctx).Create(child).Error; err != nil {
		return fmt.Errorf("failed to create %T: %w", child, err)
	}
	return nil
}

// Mutator returns a reconcile.Mutator writing departures of packageID.
// order is the plan's resulting departure list and fixes each row's position.
func (r *Repository) Mutator(packageID string, order []reconcile.Departure) *PackageMutator {
	positions := make(map[string]int, len(order))
	for i, d := range order {
		positions[d.ID] = i
	}
	return &PackageMutator{db: r.db, packageID: packageID, positions: positions}
}

// PackageMutator applies plan actions to the departures of one package.
// It implements reconcile.Mutator, reconcile.DeleteBatcher and
// reconcile.CreateBatcher. Run it inside a transaction so cascades are atomic.
type PackageMutator struct {
	db        *gorm.DB
	packageID string
	positions map[string]int
}

var (
	_ reconcile.Mutator       = (*PackageMutator)(nil)
	_ reconcile.DeleteBatcher = (*PackageMutator)(nil)
	_ reconcile.CreateBatcher = (*PackageMutator)(nil)
)

// DeleteDeparture removes one departure with its children.
func (m *PackageMutator) DeleteDeparture(ctx context.Context, id string) error {
	return m.DeleteDepartures(ctx, []string{id})
}

// DeleteDepartures removes the departures and their children.
func (m *PackageMutator) DeleteDepartures(ctx context.Context, ids []string) error {
	db := m.db.WithContext(ctx)
	for _, child := range []any{&models.SupplierLink{}, &models.CostLine{}, &models.TimelineItem{}} {
		if err := db.Where("departure_id IN ?", ids).Delete(child).Error; err != nil {
			return fmt.Errorf("failed to delete %T children: %w", child, err)
		}
	}
	if err := db.Where("package_id = ? AND id IN ?", m.packageID, ids).Delete(&models.Departure{}).Error; err != nil {
		return fmt.Errorf("failed to delete departures: %w", err)
	}
	return nil
}

// UpdateDeparture writes the flight-derived fields and position only.
func (m *PackageMutator) UpdateDeparture(ctx context.Context, d reconcile.Departure) error {
	res := m.db.WithContext(ctx).Model(&models.Departure{}).
		Where("id = ? AND package_id = ?", d.ID, m.packageID).
		Updates(map[string]any{
			"flight_label":   d.FlightLabel,
			"airline":        d.Airline,
			"departure_date": d.DepartureDate,
			"return_date":    d.ReturnDate,
			"position":       m.positions[d.ID],
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports 0 affected rows when the stored values did not change.
	var count int64
	if err := m.db.WithContext(ctx).Model(&models.Departure{}).
		Where("id = ? AND package_id = ?", d.ID, m.packageID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrDepartureNotFound
	}
	return nil
}

// CreateDeparture inserts one departure with its children.
func (m *PackageMutator) CreateDeparture(ctx context.Context, d reconcile.Departure) error {
	return m.CreateDepartures(ctx, []reconcile.Departure{d})
}

// CreateDepartures inserts the departures with their children.
func (m *PackageMutator) CreateDepartures(ctx context.Context, departures []reconcile.Departure) error {
	rows := make([]models.Departure, 0, len(departures))
	for _, d := range departures {
		rows = append(rows, models.DepartureFromDomain(m.packageID, m.positions[d.ID], d))
	}
	return m.db.WithContext(ctx).Create(&rows).Error
}
