package snapshot

import (
	"fmt"
	"testing"
	"time"

	"travel-ops/core/migrate"
	"travel-ops/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func testEngine() *reconcile.Engine {
	seq := 0
	return &reconcile.Engine{
		NewID: func() string {
			seq++
			return fmt.Sprintf("new-%d", seq)
		},
		Now: func() time.Time { return fixedNow },
	}
}

const packagesSnapshot = `{
  "schemaVersion": 3,
  "bookings": [{"id": "b1", "departureGroupId": "g1"}],
  "packages": [
    {
      "id": "pkg-1",
      "status": "published",
      "flights": {"flights": [
        {"airline": "TAP", "departureDate": "2025-06-10", "returnDate": "2025-06-20"},
        {"airline": "TAP", "departureDate": "2025-07-01", "returnDate": "2025-07-11"}
      ]},
      "opsProject": {
        "id": "ops-1",
        "packageId": "pkg-1",
        "groups": [
          {"id": "g1", "airline": "TAP", "departureDate": "2025-06-10", "returnDate": "2025-06-20",
           "flightLabel": "TAP - depart 2025-06-10", "status": "validated",
           "validationDate": "2025-04-01T08:00:00.000Z", "roomingList": "v2",
           "suppliers": [{"name": "Riad Atlas", "cost": 1250.50}], "costs": [], "timeline": []},
          {"id": "g2", "airline": "TAP", "departureDate": "2025-07-01", "returnDate": "2025-07-11",
           "flightLabel": "TAP - depart 2025-07-01", "status": "pending_validation",
           "suppliers": [], "costs": [{"label": "Deposit"}], "timeline": [{"title": "Groupe créé"}]}
        ]
      }
    },
    {"id": "pkg-2", "flights": []}
  ]
}`

func decodeState(t *testing.T, raw string) migrate.State {
	t.Helper()
	state, err := migrate.Decode([]byte(raw))
	require.NoError(t, err)
	return state
}

func groupsOf(t *testing.T, state migrate.State, packageID string) []map[string]any {
	t.Helper()
	_, pkg, err := findPackage(state, packageID)
	require.NoError(t, err)
	_, groups := projectGroups(pkg)
	return groups
}

func TestPackageFlights_Layouts(t *testing.T) {
	state := decodeState(t, packagesSnapshot)

	_, wrapped, err := findPackage(state, "pkg-1")
	require.NoError(t, err)
	assert.Len(t, packageFlights(wrapped), 2)

	_, flat, err := findPackage(state, "pkg-2")
	require.NoError(t, err)
	assert.Empty(t, packageFlights(flat))

	updated := withFlights(wrapped, []reconcile.FlightSegment{{Airline: "AF", DepartureDate: "2025-09-01"}})
	_, stillWrapped := updated["flights"].(map[string]any)
	assert.True(t, stillWrapped)
	assert.Equal(t, "AF", packageFlights(updated)[0].Airline)
}

func TestReconcileFlights_PreservesUnknownKeys(t *testing.T) {
	state := decodeState(t, packagesSnapshot)

	next, plan, err := reconcileFlights(testEngine(), state, "pkg-1", []reconcile.FlightSegment{
		{Airline: "TAP", DepartureDate: "2025-06-10", ReturnDate: "2025-06-21"},
	})
	require.NoError(t, err)

	assert.True(t, plan.Changed)
	assert.Equal(t, 1, plan.Summary.Updated)
	assert.Equal(t, 1, plan.Summary.Deleted)
	assert.Equal(t, 2, plan.Summary.DeletedChildren)

	groups := groupsOf(t, next, "pkg-1")
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "g1", g["id"])
	assert.Equal(t, "2025-06-21", g["returnDate"])
	assert.Equal(t, "validated", g["status"])
	assert.Equal(t, "2025-04-01T08:00:00.000Z", g["validationDate"])
	assert.Equal(t, "v2", g["roomingList"])
	assert.Len(t, g["suppliers"], 1)

	// Input untouched.
	assert.Len(t, groupsOf(t, state, "pkg-1"), 2)
	assert.Equal(t, "2025-06-20", groupsOf(t, state, "pkg-1")[0]["returnDate"])
}

func TestReconcileFlights_CreatesProjectAndGroups(t *testing.T) {
	state := decodeState(t, packagesSnapshot)

	next, plan, err := reconcileFlights(testEngine(), state, "pkg-2", []reconcile.FlightSegment{
		{Airline: "AF", DepartureDate: "2025-09-01", ReturnDate: "2025-09-08"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Created)

	_, pkg, err := findPackage(next, "pkg-2")
	require.NoError(t, err)
	project := pkg["opsProject"].(map[string]any)
	assert.Equal(t, "pkg-2", project["packageId"])
	assert.NotEmpty(t, project["id"])

	groups := groupsOf(t, next, "pkg-2")
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "AF - depart 2025-09-01", g["flightLabel"])
	assert.Equal(t, "pending_validation", g["status"])
	assert.Equal(t, []any{}, g["suppliers"])
	assert.Equal(t, []any{}, g["costs"])
	timeline := g["timeline"].([]any)
	require.Len(t, timeline, 1)
	item := timeline[0].(map[string]any)
	assert.Equal(t, reconcile.CreatedTimelineTitle, item["title"])
	assert.Equal(t, "Vol 1", item["note"])
	assert.Equal(t, "info", item["kind"])
	assert.Equal(t, "2025-05-01T10:00:00.000Z", item["date"])
}

func TestReconcileFlights_ReorderKeepsGroups(t *testing.T) {
	state := decodeState(t, packagesSnapshot)
	_, pkg, _ := findPackage(state, "pkg-1")
	flights := packageFlights(pkg)

	next, plan, err := reconcileFlights(testEngine(), state, "pkg-1", []reconcile.FlightSegment{flights[1], flights[0]})
	require.NoError(t, err)

	assert.False(t, plan.Changed)
	groups := groupsOf(t, next, "pkg-1")
	assert.Equal(t, "g1", groups[0]["id"])
	_, nextPkg, _ := findPackage(next, "pkg-1")
	assert.Equal(t, "2025-07-01", packageFlights(nextPkg)[0].DepartureDate)
}

func TestReconcileFlights_LegacyGroupsWithoutIDs(t *testing.T) {
	state := decodeState(t, `{
  "schemaVersion": 3,
  "packages": [{
    "id": "pkg-1",
    "flights": [
      {"airline": "TAP", "departureDate": "2025-06-02", "returnDate": "2025-06-09"},
      {"airline": "AF", "departureDate": "2025-07-02", "returnDate": "2025-07-09"}
    ],
    "opsProject": {"id": "ops-1", "groups": [
      {"airline": "TAP", "departureDate": "2025-06-02", "returnDate": "2025-06-09", "suppliers": [{"name": "Hotel"}]},
      {"airline": "AF", "departureDate": "2025-07-02", "returnDate": "2025-07-09", "suppliers": [{"name": "Bus"}]}
    ]}
  }]
}`)

	next, plan, err := reconcileFlights(testEngine(), state, "pkg-1", []reconcile.FlightSegment{
		{Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"},
		{Airline: "AF", DepartureDate: "2025-07-02", ReturnDate: "2025-07-09"},
		{Airline: "IB", DepartureDate: "2025-08-02", ReturnDate: "2025-08-09"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Created)
	assert.Equal(t, 0, plan.Summary.Deleted)

	groups := groupsOf(t, next, "pkg-1")
	require.Len(t, groups, 3)
	assert.Equal(t, "new-1", groups[0]["id"])
	assert.Equal(t, "TAP", groups[0]["airline"])
	assert.Equal(t, "Hotel", groups[0]["suppliers"].([]any)[0].(map[string]any)["name"])
	assert.Equal(t, "new-2", groups[1]["id"])
	assert.Equal(t, "AF", groups[1]["airline"])
	assert.Equal(t, "Bus", groups[1]["suppliers"].([]any)[0].(map[string]any)["name"])
	assert.Equal(t, "new-3", groups[2]["id"])
	assert.Equal(t, "IB", groups[2]["airline"])

	// Input untouched.
	_, hasID := groupsOf(t, state, "pkg-1")[0]["id"]
	assert.False(t, hasID)
}

func TestReconcileFlights_UnknownPackage(t *testing.T) {
	_, _, err := reconcileFlights(testEngine(), decodeState(t, packagesSnapshot), "nope", nil)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestSetGroupStatus(t *testing.T) {
	state := decodeState(t, packagesSnapshot)

	next, g, err := setGroupStatus(state, "pkg-1", "g2", reconcile.StatusValidated, false, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "validated", g["status"])
	assert.Equal(t, "2025-05-01T10:00:00.000Z", g["validationDate"])
	assert.Equal(t, "validated", groupsOf(t, next, "pkg-1")[1]["status"])

	// Already validated: the date is kept.
	_, g, err = setGroupStatus(state, "pkg-1", "g1", reconcile.StatusValidated, false, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01T08:00:00.000Z", g["validationDate"])

	_, g, err = setGroupStatus(state, "pkg-1", "g1", reconcile.StatusPendingValidation, true, fixedNow)
	require.NoError(t, err)
	_, has := g["validationDate"]
	assert.False(t, has)

	_, _, err = setGroupStatus(state, "pkg-1", "g9", reconcile.StatusValidated, false, fixedNow)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, _, err = setGroupStatus(state, "pkg-1", "g1", "approved", false, fixedNow)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
