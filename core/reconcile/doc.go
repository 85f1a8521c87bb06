// Package reconcile keeps a package's departures in sync with its flight schedule.
//
// Every departure (ops group) is derived from one flight segment but accumulates
// operational data of its own: supplier links, cost lines, a timeline and a
// validation status. When the flight list of a package is edited, the engine
// decides which existing departures still represent the same flight, which ones
// must be created and which ones disappeared.
//
// # Architecture
//
// The reconcile system consists of three components:
//
// 1. Keys: structural keys (date|airline|return) derived from flight segments and
// departures. Flight segments have no identity, so they are compared by key.
//
// 2. Index: a lookup from key to departures with three registrations per
// departure (full, date+airline, date only) so that a flight whose airline or
// return date changed can still recover its departure.
//
// 3. Engine: gates on a change of the key multiset, matches each next segment
// against the index and produces a Plan of create/update/delete actions.
//
// The engine is pure. Persisting a plan is delegated to a Mutator through ApplyPlan.
//
// # Usage Example
//
//	plan := reconcile.NewEngine().Reconcile(previousFlights, nextFlights, departures)
//	if plan.Changed {
//	    executed, err := reconcile.ApplyPlan(ctx, repo, plan, reconcile.Options{Confirmed: true})
//	}
package reconcile
