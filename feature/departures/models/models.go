package models

import (
	"time"

	"travel-ops/core/reconcile"
)

// Package is a sellable travel package and its ordered flight list.
type Package struct {
	ID         string                    `gorm:"column:id;type:varchar(36);primaryKey"`
	Status     string                    `gorm:"column:status;type:varchar(16);not null"`
	Flights    []reconcile.FlightSegment `gorm:"column:flights;type:text;serializer:json"`
	Departures []Departure               `gorm:"foreignKey:PackageID"`
	CreatedAt  time.Time                 `gorm:"column:created_at"`
	UpdatedAt  time.Time                 `gorm:"column:updated_at"`
}

// TableName overrides the table name used by Package to `packages`.
func (Package) TableName() string { return "packages" }

// Departure is the ops group row derived from one flight segment.
// Position keeps the departure in flight-list order.
type Departure struct {
	ID             string         `gorm:"column:id;type:varchar(36);primaryKey"`
	PackageID      string         `gorm:"column:package_id;type:varchar(36);not null;index"`
	Position       int            `gorm:"column:position;type:int;not null"`
	FlightLabel    string         `gorm:"column:flight_label;type:varchar(255)"`
	Airline        string         `gorm:"column:airline;type:varchar(128)"`
	DepartureDate  string         `gorm:"column:departure_date;type:varchar(10);index"`
	ReturnDate     string         `gorm:"column:return_date;type:varchar(10)"`
	Status         string         `gorm:"column:status;type:varchar(32);not null"`
	ValidationDate *time.Time     `gorm:"column:validation_date"`
	SupplierLinks  []SupplierLink `gorm:"foreignKey:DepartureID"`
	CostLines      []CostLine     `gorm:"foreignKey:DepartureID"`
	TimelineItems  []TimelineItem `gorm:"foreignKey:DepartureID"`
}

// TableName overrides the table name used by Departure to `departures`.
func (Departure) TableName() string { return "departures" }

// SupplierLink is a supplier booked for a departure.
type SupplierLink struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey"`
	DepartureID string     `gorm:"column:departure_id;type:varchar(36);not null;index"`
	Name        string     `gorm:"column:name;type:varchar(255);not null"`
	Contact     string     `gorm:"column:contact;type:varchar(255)"`
	Cost        *float64   `gorm:"column:cost"`
	Deadline    *time.Time `gorm:"column:deadline"`
}

// TableName overrides the table name used by SupplierLink to `supplier_links`.
func (SupplierLink) TableName() string { return "supplier_links" }

// CostLine is a payment step of a departure.
type CostLine struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey"`
	DepartureID string     `gorm:"column:departure_id;type:varchar(36);not null;index"`
	Label       string     `gorm:"column:label;type:varchar(255);not null"`
	Amount      float64    `gorm:"column:amount;not null"`
	DueDate     *time.Time `gorm:"column:due_date"`
	Paid        bool       `gorm:"column:paid;not null"`
}

// TableName overrides the table name used by CostLine to `cost_lines`.
func (CostLine) TableName() string { return "cost_lines" }

// TimelineItem is an entry of a departure's ops timeline.
type TimelineItem struct {
	ID          string     `gorm:"column:id;type:varchar(36);primaryKey"`
	DepartureID string     `gorm:"column:departure_id;type:varchar(36);not null;index"`
	Title       string     `gorm:"column:title;type:varchar(255);not null"`
	Date        *time.Time `gorm:"column:date"`
	Note        string     `gorm:"column:note;type:text"`
	Kind        string     `gorm:"column:kind;type:varchar(16);not null"`
}

// TableName overrides the table name used by TimelineItem to `timeline_items`.
func (TimelineItem) TableName() string { return "timeline_items" }

// All returns every model, parents first.
func All() []any {
	return []any{&Package{}, &Departure{}, &SupplierLink{}, &CostLine{}, &TimelineItem{}}
}
