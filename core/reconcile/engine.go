package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreatedTimelineTitle is the title of the timeline entry seeded on new departures.
const CreatedTimelineTitle = "Groupe créé"

// Engine reconciles departures against flight lists.
// NewID and Now are injectable for deterministic output.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

// NewEngine returns an engine generating UUIDs and stamping wall-clock time.
func NewEngine() *Engine {
	return &Engine{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// Reconcile diffs previous and next flights and plans the departure changes.
//
// Nothing runs unless the key multiset changed; the returned plan then holds
// departures as given. Otherwise every next segment either claims an existing
// departure (exact, date+airline, then date-only key) or creates one, and every
// departure left unclaimed is deleted. A departure is claimed at most once.
func (e *Engine) Reconcile(previous, next []FlightSegment, departures []Departure) *Plan {
	if !HasStructureChanged(previous, next) {
		return &Plan{
			Changed:    false,
			Departures: departures,
			Actions:    []Action{},
		}
	}

	idx := BuildIndex(departures)
	claimed := make(map[string]struct{}, len(departures))

	result := make([]Departure, 0, len(next))
	var upserts []Action
	var summary PlanSummary

	for i, f := range next {
		if existing, level, ok := idx.Match(f, claimed); ok {
			claimed[existing.ID] = struct{}{}
			updated := refresh(existing, f)
			result = append(result, updated)
			upserts = append(upserts, Action{
				Type:        ActionUpdate,
				DepartureID: updated.ID,
				FlightIndex: i,
				Match:       level,
				Reason:      fmt.Sprintf("flight %d matched on %s key", i+1, level),
				Departure:   updated,
			})
			summary.Updated++
			continue
		}

		created := e.newDeparture(f, i)
		result = append(result, created)
		upserts = append(upserts, Action{
			Type:        ActionCreate,
			DepartureID: created.ID,
			FlightIndex: i,
			Reason:      fmt.Sprintf("flight %d has no departure", i+1),
			Departure:   created,
		})
		summary.Created++
	}

	actions := make([]Action, 0, len(upserts)+len(departures)-len(claimed))
	for _, d := range departures {
		if _, ok := claimed[d.ID]; ok {
			continue
		}
		actions = append(actions, Action{
			Type:        ActionDelete,
			DepartureID: d.ID,
			FlightIndex: -1,
			Reason:      fmt.Sprintf("flight %s no longer scheduled", DepartureKey(d)),
			Departure:   d,
		})
		summary.Deleted++
		summary.DeletedChildren += d.ChildCount()
	}
	actions = append(actions, upserts...)

	return &Plan{
		Changed:    true,
		Departures: result,
		Actions:    actions,
		Summary:    summary,
	}
}

// refresh copies flight-derived fields onto d; children are kept as is.
func refresh(d Departure, f FlightSegment) Departure {
	d.FlightLabel = FlightLabel(f)
	d.Airline = f.Airline
	d.DepartureDate = f.DepartureDate
	d.ReturnDate = f.ReturnDate
	return d
}

func (e *Engine) newDeparture(f FlightSegment, i int) Departure {
	id := e.NewID()
	now := e.Now()
	return Departure{
		ID:            id,
		FlightLabel:   FlightLabel(f),
		Airline:       f.Airline,
		DepartureDate: f.DepartureDate,
		ReturnDate:    f.ReturnDate,
		Status:        StatusPendingValidation,
		SupplierLinks: []SupplierLink{},
		CostLines:     []CostLine{},
		TimelineItems: []TimelineItem{
			{
				ID:          e.NewID(),
				DepartureID: id,
				Title:       CreatedTimelineTitle,
				Date:        &now,
				Note:        fmt.Sprintf("Vol %d", i+1),
				Kind:        KindInfo,
			},
		},
	}
}

// Reconcile runs a default engine.
func Reconcile(previous, next []FlightSegment, departures []Departure) *Plan {
	return NewEngine().Reconcile(previous, next, departures)
}
