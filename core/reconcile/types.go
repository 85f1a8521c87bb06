package reconcile

import "time"

// Status is the validation status of a departure.
type Status string

const (
	// StatusPendingValidation is the initial status of every departure.
	StatusPendingValidation Status = "pending_validation"
	// StatusValidated marks a departure confirmed by operations.
	StatusValidated Status = "validated"
)

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	return s == StatusPendingValidation || s == StatusValidated
}

// TimelineKind classifies a timeline entry.
type TimelineKind string

const (
	// KindInfo is a plain note. New departures get one on creation.
	KindInfo TimelineKind = "info"
	// KindDeadline marks a date ops must meet.
	KindDeadline TimelineKind = "deadline"
	// KindRisk flags a problem on the departure.
	KindRisk TimelineKind = "risk"
	// KindDone records a completed step.
	KindDone TimelineKind = "done"
)

// Valid reports whether k is a known timeline kind.
func (k TimelineKind) Valid() bool {
	switch k {
	case KindInfo, KindDeadline, KindRisk, KindDone:
		return true
	default:
		return false
	}
}

// FlightSegment is one scheduled departure/return pair of a package.
// It carries no identity and is compared structurally.
type FlightSegment struct {
	// Airline may be empty.
	Airline string `json:"airline"`
	// DepartureDate is a calendar date (YYYY-MM-DD).
	DepartureDate string `json:"departureDate"`
	// ReturnDate is a calendar date (YYYY-MM-DD).
	ReturnDate string `json:"returnDate"`
	Duration   string `json:"duration,omitempty"`
	Details    string `json:"details,omitempty"`
}

// SupplierLink is a supplier attached to a departure.
type SupplierLink struct {
	ID          string     `json:"id"`
	DepartureID string     `json:"departureId"`
	Name        string     `json:"name"`
	Contact     string     `json:"contact,omitempty"`
	Cost        *float64   `json:"cost,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// CostLine is a payment step of a departure.
type CostLine struct {
	ID          string     `json:"id"`
	DepartureID string     `json:"departureId"`
	Label       string     `json:"label"`
	Amount      float64    `json:"amount"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Paid        bool       `json:"paid"`
}

// TimelineItem is an entry of a departure's operational timeline.
type TimelineItem struct {
	ID          string       `json:"id"`
	DepartureID string       `json:"departureId"`
	Title       string       `json:"title"`
	Date        *time.Time   `json:"date,omitempty"`
	Note        string       `json:"note,omitempty"`
	Kind        TimelineKind `json:"kind"`
}

// Departure (ops group) is the operational record derived from a flight segment.
type Departure struct {
	ID             string         `json:"id"`
	FlightLabel    string         `json:"flightLabel"`
	Airline        string         `json:"airline"`
	DepartureDate  string         `json:"departureDate"`
	ReturnDate     string         `json:"returnDate"`
	Status         Status         `json:"status"`
	ValidationDate *time.Time     `json:"validationDate,omitempty"`
	SupplierLinks  []SupplierLink `json:"supplierLinks"`
	CostLines      []CostLine     `json:"costLines"`
	TimelineItems  []TimelineItem `json:"timelineItems"`
}

// ChildCount returns the number of records owned by the departure.
func (d Departure) ChildCount() int {
	return len(d.SupplierLinks) + len(d.CostLines) + len(d.TimelineItems)
}

// SetStatus transitions the departure to status. Entering validated stamps
// ValidationDate with now; clearValidation resets it. Otherwise the date is
// left untouched.
func (d *Departure) SetStatus(status Status, now time.Time, clearValidation bool) {
	if status == StatusValidated && d.Status != StatusValidated {
		ts := now
		d.ValidationDate = &ts
	} else if clearValidation {
		d.ValidationDate = nil
	}
	d.Status = status
}

// ActionType represents the type of departure mutation.
type ActionType string

const (
	// ActionCreate creates a departure for an unmatched flight segment.
	ActionCreate ActionType = "create"
	// ActionUpdate refreshes label, airline and dates of a matched departure.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an unclaimed departure and its children.
	ActionDelete ActionType = "delete"
)

// MatchLevel tells which index key claimed a departure.
type MatchLevel string

const (
	// MatchNone means the departure was not claimed.
	MatchNone MatchLevel = ""
	// MatchExact claims on date, airline and return date.
	MatchExact MatchLevel = "exact"
	// MatchAirline claims on date and airline.
	MatchAirline MatchLevel = "date_airline"
	// MatchDate claims on the departure date alone.
	MatchDate MatchLevel = "date"
)

// Action represents a planned departure mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// DepartureID is the departure affected by the action.
	DepartureID string `json:"departure_id"`

	// FlightIndex is the position of the next-list segment that produced the
	// action. It is -1 for deletions.
	FlightIndex int `json:"flight_index"`

	// Match is the fallback level that claimed the departure (updates only).
	Match MatchLevel `json:"match,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Departure is the departure state to persist for create and update, and the
	// removed departure for delete.
	Departure Departure `json:"departure"`
}

// Plan is the outcome of a reconciliation.
type Plan struct {
	// Changed is false when the flight key multiset did not change. The plan
	// then carries the input departures untouched and no actions.
	Changed bool `json:"changed"`

	// Departures is the resulting departure list, one per next flight segment in
	// next-list order.
	Departures []Departure `json:"departures"`

	// Actions contains planned mutation operations, deletes first.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// DeletedIDs returns the identifiers of departures the plan deletes.
func (p *Plan) DeletedIDs() []string {
	var ids []string
	for _, a := range p.Actions {
		if a.Type == ActionDelete {
			ids = append(ids, a.DepartureID)
		}
	}
	return ids
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`

	// DeletedChildren counts supplier links, cost lines and timeline items
	// removed together with deleted departures.
	DeletedChildren int `json:"deleted_children"`
}

// Options controls plan execution.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the caller accepted destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
