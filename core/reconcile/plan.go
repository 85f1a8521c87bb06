package reconcile

import (
	"context"
	"fmt"
)

// Mutator persists departure actions.
type Mutator interface {
	// DeleteDeparture removes a departure with its supplier links, cost lines and
	// timeline items.
	DeleteDeparture(ctx context.Context, id string) error

	// UpdateDeparture stores label, airline and dates of an existing departure.
	// Children must not be touched.
	UpdateDeparture(ctx context.Context, d Departure) error

	// CreateDeparture inserts a departure and its children.
	CreateDeparture(ctx context.Context, d Departure) error
}

// DeleteBatcher is implemented by mutators able to delete many departures at once.
type DeleteBatcher interface {
	DeleteDepartures(ctx context.Context, ids []string) error
}

// CreateBatcher is implemented by mutators able to insert many departures at once.
type CreateBatcher interface {
	CreateDepartures(ctx context.Context, departures []Departure) error
}

// ApplyPlan executes the actions of a plan: deletions, then updates, then
// creations. It returns the number of actions executed.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, m Mutator, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun || plan == nil || !plan.Changed {
		return 0, nil
	}

	var (
		deleteIDs []string
		updates   []Departure
		creates   []Departure
	)

	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDelete:
			deleteIDs = append(deleteIDs, action.DepartureID)
		case ActionUpdate:
			updates = append(updates, action.Departure)
		case ActionCreate:
			creates = append(creates, action.Departure)
		}
	}

	if len(deleteIDs) > 0 {
		if batcher, ok := m.(DeleteBatcher); ok {
			if err := batcher.DeleteDepartures(ctx, deleteIDs); err != nil {
				return executed, fmt.Errorf("failed to batch delete departures: %w", err)
			}
			executed += len(deleteIDs)
		} else {
			for _, id := range deleteIDs {
				if err := m.DeleteDeparture(ctx, id); err != nil {
					return executed, fmt.Errorf("failed to delete departure %s: %w", id, err)
				}
				executed++
			}
		}
	}

	for _, d := range updates {
		if err := m.UpdateDeparture(ctx, d); err != nil {
			return executed, fmt.Errorf("failed to update departure %s: %w", d.ID, err)
		}
		executed++
	}

	if len(creates) > 0 {
		if batcher, ok := m.(CreateBatcher); ok {
			if err := batcher.CreateDepartures(ctx, creates); err != nil {
				return executed, fmt.Errorf("failed to batch create departures: %w", err)
			}
			executed += len(creates)
		} else {
			for _, d := range creates {
				if err := m.CreateDeparture(ctx, d); err != nil {
					return executed, fmt.Errorf("failed to create departure %s: %w", d.ID, err)
				}
				executed++
			}
		}
	}

	return executed, nil
}
