package migrate

import (
	"travel-ops/core/reconcile"
	"travel-ops/core/utils"
)

// Collection keys in the snapshot.
const (
	KeyPackages   = "packages"
	KeyBookings   = "bookings"
	KeyOpsProject = "opsProject"
	KeyGroups     = "groups"
)

// groupChildFields are the child collections every ops group must carry.
var groupChildFields = []string{"suppliers", "costs", "timeline"}

// migrateOpsStatus (v0 → v1) normalizes ops groups: canonical status, legacy
// validation and departure date fields, project id and package link. Projects
// stored under the legacy "ops" key are exposed as "opsProject".
func migrateOpsStatus(state State) State {
	return mapPackages(state, func(pkg map[string]any) map[string]any {
		rawProject, _ := ResolveField(pkg, opsProjectFields)
		project, ok := utils.Map(rawProject)
		if !ok {
			return pkg
		}
		groups, ok := utils.Slice(project[KeyGroups])
		if !ok {
			return pkg
		}

		nextGroups := make([]any, len(groups))
		for i, raw := range groups {
			group, ok := utils.Map(raw)
			if !ok {
				nextGroups[i] = raw
				continue
			}
			g := utils.CloneMap(group)
			rawStatus, _ := ResolveField(group, groupStatusFields)
			g["status"] = string(ResolveStatus(rawStatus))
			forwardFill(g, validationDateFields)
			forwardFill(g, departureDateFields)
			nextGroups[i] = g
		}

		nextProject := utils.CloneMap(project)
		forwardFill(nextProject, opsProjectIDFields)
		if _, ok := ResolveField(project, []string{"packageId"}); !ok {
			if id, ok := ResolveField(pkg, []string{"id"}); ok {
				nextProject["packageId"] = id
			}
		}
		nextProject[KeyGroups] = nextGroups

		next := utils.CloneMap(pkg)
		next[KeyOpsProject] = nextProject
		return next
	})
}

// migrateBookings (v1 → v2) forward-fills departureGroupId from its legacy
// spellings.
func migrateBookings(state State) State {
	bookings, ok := utils.Slice(state[KeyBookings])
	if !ok {
		return state
	}

	nextBookings := make([]any, len(bookings))
	for i, raw := range bookings {
		booking, ok := utils.Map(raw)
		if !ok {
			nextBookings[i] = raw
			continue
		}
		b := utils.CloneMap(booking)
		forwardFill(b, departureGroupIDField)
		nextBookings[i] = b
	}

	next := state.Clone()
	next[KeyBookings] = nextBookings
	return next
}

// migrateGroupCollections (v2 → v3) gives every ops group its child
// collections and recomputes flightLabel, which older builds rendered in an
// accented variant.
func migrateGroupCollections(state State) State {
	return mapPackages(state, func(pkg map[string]any) map[string]any {
		project, ok := utils.Map(pkg[KeyOpsProject])
		if !ok {
			return pkg
		}
		groups, ok := utils.Slice(project[KeyGroups])
		if !ok {
			return pkg
		}

		nextGroups := make([]any, len(groups))
		for i, raw := range groups {
			group, ok := utils.Map(raw)
			if !ok {
				nextGroups[i] = raw
				continue
			}
			g := utils.CloneMap(group)
			for _, field := range groupChildFields {
				if _, ok := utils.Slice(g[field]); !ok {
					g[field] = []any{}
				}
			}
			airline, hasAirline := utils.String(g["airline"])
			date, hasDate := utils.String(g["departureDate"])
			if hasAirline || hasDate {
				g["flightLabel"] = reconcile.FlightLabel(reconcile.FlightSegment{Airline: airline, DepartureDate: date})
			}
			nextGroups[i] = g
		}

		nextProject := utils.CloneMap(project)
		nextProject[KeyGroups] = nextGroups
		next := utils.CloneMap(pkg)
		next[KeyOpsProject] = nextProject
		return next
	})
}

// mapPackages applies fn to every package object. Non-object entries and
// states without a packages array pass through.
func mapPackages(state State, fn func(map[string]any) map[string]any) State {
	packages, ok := utils.Slice(state[KeyPackages])
	if !ok {
		return state
	}

	nextPackages := make([]any, len(packages))
	for i, raw := range packages {
		pkg, ok := utils.Map(raw)
		if !ok {
			nextPackages[i] = raw
			continue
		}
		nextPackages[i] = fn(pkg)
	}

	next := state.Clone()
	next[KeyPackages] = nextPackages
	return next
}
