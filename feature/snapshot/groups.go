package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"travel-ops/core/migrate"
	"travel-ops/core/reconcile"
	"travel-ops/core/utils"
)

// Snapshot field names used by the typed mutations.
const (
	fieldID             = "id"
	fieldFlights        = "flights"
	fieldPackageID      = "packageId"
	fieldFlightLabel    = "flightLabel"
	fieldAirline        = "airline"
	fieldDepartureDate  = "departureDate"
	fieldReturnDate     = "returnDate"
	fieldStatus         = "status"
	fieldValidationDate = "validationDate"
	fieldSuppliers      = "suppliers"
	fieldCosts          = "costs"
	fieldTimeline       = "timeline"
)

// timestampLayout matches the ISO strings already present in snapshots.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// findPackage returns the index and object of the package with id.
func findPackage(state migrate.State, id string) (int, map[string]any, error) {
	packages, _ := utils.Slice(state[migrate.KeyPackages])
	for i, raw := range packages {
		pkg, ok := utils.Map(raw)
		if !ok {
			continue
		}
		if pid, _ := utils.String(pkg[fieldID]); pid == id {
			return i, pkg, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
}

// replacePackage returns a copy of state with packages[i] set to pkg.
func replacePackage(state migrate.State, i int, pkg map[string]any) migrate.State {
	packages, _ := utils.Slice(state[migrate.KeyPackages])
	next := make([]any, len(packages))
	copy(next, packages)
	next[i] = pkg

	out := state.Clone()
	out[migrate.KeyPackages] = next
	return out
}

// packageFlights reads the flight list, stored either as an array or as
// {"flights": [...]} inside the package.
func packageFlights(pkg map[string]any) []reconcile.FlightSegment {
	raw := pkg[fieldFlights]
	if wrapper, ok := utils.Map(raw); ok {
		raw = wrapper[fieldFlights]
	}
	list, _ := utils.Slice(raw)

	flights := make([]reconcile.FlightSegment, 0, len(list))
	for _, item := range list {
		f, ok := utils.Map(item)
		if !ok {
			continue
		}
		flights = append(flights, reconcile.FlightSegment{
			Airline:       utils.StringOr(f[fieldAirline], ""),
			DepartureDate: utils.StringOr(f[fieldDepartureDate], ""),
			ReturnDate:    utils.StringOr(f[fieldReturnDate], ""),
			Duration:      utils.StringOr(f["duration"], ""),
			Details:       utils.StringOr(f["details"], ""),
		})
	}
	return flights
}

// withFlights stores flights in the package keeping the existing layout.
func withFlights(pkg map[string]any, flights []reconcile.FlightSegment) map[string]any {
	list := make([]any, 0, len(flights))
	for _, f := range flights {
		item := map[string]any{
			fieldAirline:       f.Airline,
			fieldDepartureDate: f.DepartureDate,
			fieldReturnDate:    f.ReturnDate,
		}
		if f.Duration != "" {
			item["duration"] = f.Duration
		}
		if f.Details != "" {
			item["details"] = f.Details
		}
		list = append(list, item)
	}

	out := utils.CloneMap(pkg)
	if wrapper, ok := utils.Map(pkg[fieldFlights]); ok {
		w := utils.CloneMap(wrapper)
		w[fieldFlights] = list
		out[fieldFlights] = w
	} else {
		out[fieldFlights] = list
	}
	return out
}

// projectGroups returns the ops project and its group objects keyed by id.
func projectGroups(pkg map[string]any) (map[string]any, []map[string]any) {
	project, ok := utils.Map(pkg[migrate.KeyOpsProject])
	if !ok {
		return nil, nil
	}
	list, _ := utils.Slice(project[migrate.KeyGroups])
	groups := make([]map[string]any, 0, len(list))
	for _, raw := range list {
		if g, ok := utils.Map(raw); ok {
			groups = append(groups, g)
		}
	}
	return project, groups
}

// readGroupID reads a group's id. Numeric ids from older exports count as ids.
func readGroupID(g map[string]any) string {
	if n, ok := g[fieldID].(json.Number); ok {
		return n.String()
	}
	return utils.StringOr(g[fieldID], "")
}

// groupToDeparture extracts the fields the engine works on. Children are
// carried only to count what a deletion removes.
func groupToDeparture(g map[string]any) reconcile.Departure {
	d := reconcile.Departure{
		ID:            readGroupID(g),
		FlightLabel:   utils.StringOr(g[fieldFlightLabel], ""),
		Airline:       utils.StringOr(g[fieldAirline], ""),
		DepartureDate: utils.StringOr(g[fieldDepartureDate], ""),
		ReturnDate:    utils.StringOr(g[fieldReturnDate], ""),
		Status:        migrate.ResolveStatus(g[fieldStatus]),
	}
	suppliers, _ := utils.Slice(g[fieldSuppliers])
	for _, s := range suppliers {
		m, _ := utils.Map(s)
		d.SupplierLinks = append(d.SupplierLinks, reconcile.SupplierLink{DepartureID: d.ID, Name: utils.StringOr(m["name"], "")})
	}
	costs, _ := utils.Slice(g[fieldCosts])
	for _, c := range costs {
		m, _ := utils.Map(c)
		d.CostLines = append(d.CostLines, reconcile.CostLine{DepartureID: d.ID, Label: utils.StringOr(m["label"], "")})
	}
	timeline, _ := utils.Slice(g[fieldTimeline])
	for _, t := range timeline {
		m, _ := utils.Map(t)
		d.TimelineItems = append(d.TimelineItems, reconcile.TimelineItem{DepartureID: d.ID, Title: utils.StringOr(m["title"], "")})
	}
	return d
}

// departureToGroup renders a departure created by the engine.
func departureToGroup(d reconcile.Departure) map[string]any {
	timeline := make([]any, 0, len(d.TimelineItems))
	for _, t := range d.TimelineItems {
		item := map[string]any{
			"title": t.Title,
			"note":  t.Note,
			"kind":  string(t.Kind),
		}
		if t.Date != nil {
			item["date"] = formatTimestamp(*t.Date)
		}
		timeline = append(timeline, item)
	}
	return map[string]any{
		fieldID:            d.ID,
		fieldFlightLabel:   d.FlightLabel,
		fieldAirline:       d.Airline,
		fieldDepartureDate: d.DepartureDate,
		fieldReturnDate:    d.ReturnDate,
		fieldStatus:        string(d.Status),
		fieldSuppliers:     []any{},
		fieldCosts:         []any{},
		fieldTimeline:      timeline,
	}
}

// reconcileFlights runs the engine over one package of the snapshot and stores
// the new flight list. Groups that are kept retain every key they had; only
// the flight-derived fields change.
func reconcileFlights(engine *reconcile.Engine, state migrate.State, packageID string, flights []reconcile.FlightSegment) (migrate.State, *reconcile.Plan, error) {
	i, pkg, err := findPackage(state, packageID)
	if err != nil {
		return nil, nil, err
	}

	project, groups := projectGroups(pkg)
	byID := make(map[string]map[string]any, len(groups))
	departures := make([]reconcile.Departure, 0, len(groups))
	for _, g := range groups {
		d := groupToDeparture(g)
		// Legacy groups may lack an id or share one; each needs its own to be claimed.
		if _, dup := byID[d.ID]; d.ID == "" || dup {
			d.ID = engine.NewID()
			g = utils.CloneMap(g)
			g[fieldID] = d.ID
		}
		byID[d.ID] = g
		departures = append(departures, d)
	}

	plan := engine.Reconcile(packageFlights(pkg), flights, departures)
	nextPkg := withFlights(pkg, flights)
	if !plan.Changed {
		return replacePackage(state, i, nextPkg), plan, nil
	}

	nextGroups := make([]any, 0, len(plan.Departures))
	for _, d := range plan.Departures {
		original, kept := byID[d.ID]
		if !kept {
			nextGroups = append(nextGroups, departureToGroup(d))
			continue
		}
		g := utils.CloneMap(original)
		g[fieldFlightLabel] = d.FlightLabel
		g[fieldAirline] = d.Airline
		g[fieldDepartureDate] = d.DepartureDate
		g[fieldReturnDate] = d.ReturnDate
		nextGroups = append(nextGroups, g)
	}

	var nextProject map[string]any
	if project != nil {
		nextProject = utils.CloneMap(project)
	} else {
		nextProject = map[string]any{fieldID: engine.NewID()}
	}
	if _, ok := utils.FirstPresent(nextProject, fieldID); !ok {
		nextProject[fieldID] = engine.NewID()
	}
	nextProject[fieldPackageID] = packageID
	nextProject[migrate.KeyGroups] = nextGroups
	nextPkg[migrate.KeyOpsProject] = nextProject

	return replacePackage(state, i, nextPkg), plan, nil
}

// setGroupStatus applies a status transition to one ops group.
func setGroupStatus(state migrate.State, packageID, groupID string, status reconcile.Status, clearValidation bool, now time.Time) (migrate.State, map[string]any, error) {
	if !status.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	i, pkg, err := findPackage(state, packageID)
	if err != nil {
		return nil, nil, err
	}
	project, _ := projectGroups(pkg)
	list, _ := utils.Slice(project[migrate.KeyGroups])

	nextList := make([]any, len(list))
	copy(nextList, list)
	var updated map[string]any
	for j, raw := range list {
		g, ok := utils.Map(raw)
		if !ok || readGroupID(g) != groupID {
			continue
		}
		updated = utils.CloneMap(g)
		previous := migrate.ResolveStatus(g[fieldStatus])
		if status == reconcile.StatusValidated && previous != reconcile.StatusValidated {
			updated[fieldValidationDate] = formatTimestamp(now)
		} else if clearValidation {
			delete(updated, fieldValidationDate)
		}
		updated[fieldStatus] = string(status)
		nextList[j] = updated
		break
	}
	if updated == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}

	nextProject := utils.CloneMap(project)
	nextProject[migrate.KeyGroups] = nextList
	nextPkg := utils.CloneMap(pkg)
	nextPkg[migrate.KeyOpsProject] = nextProject
	return replacePackage(state, i, nextPkg), updated, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
