package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"travel-ops/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flights.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFlights(t *testing.T) {
	want := []reconcile.FlightSegment{{Airline: "TAP", DepartureDate: "2025-06-01", ReturnDate: "2025-06-08"}}

	t.Run("Array", func(t *testing.T) {
		flights, err := readFlights(writeTemp(t, `[{"airline":"TAP","departureDate":"2025-06-01","returnDate":"2025-06-08"}]`))
		require.NoError(t, err)
		assert.Equal(t, want, flights)
	})

	t.Run("Wrapped", func(t *testing.T) {
		flights, err := readFlights(writeTemp(t, ` {"flights":[{"airline":"TAP","departureDate":"2025-06-01","returnDate":"2025-06-08"}]}`))
		require.NoError(t, err)
		assert.Equal(t, want, flights)
	})

	t.Run("WrappedWithoutList", func(t *testing.T) {
		_, err := readFlights(writeTemp(t, `{"status":"published"}`))
		assert.Error(t, err)
	})

	t.Run("EmptyList", func(t *testing.T) {
		flights, err := readFlights(writeTemp(t, `{"flights":[]}`))
		require.NoError(t, err)
		assert.Empty(t, flights)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := readFlights(writeTemp(t, `[{`))
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := readFlights(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestPrintReconcileReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	plan := &reconcile.Plan{
		Changed: true,
		Actions: []reconcile.Action{
			{
				Type:        reconcile.ActionDelete,
				DepartureID: "g1",
				FlightIndex: -1,
				Departure: reconcile.Departure{
					ID:            "g1",
					SupplierLinks: []reconcile.SupplierLink{{ID: "s1"}},
					CostLines:     []reconcile.CostLine{{ID: "c1"}, {ID: "c2"}},
				},
			},
			{Type: reconcile.ActionCreate, DepartureID: "g2"},
		},
		Summary: reconcile.PlanSummary{Created: 1, Deleted: 1, DeletedChildren: 3},
	}

	printReconcileReport(zap.New(core), plan)

	deletions := logs.FilterMessage("Planned deletion").All()
	require.Len(t, deletions, 1)
	fields := deletions[0].ContextMap()
	assert.Equal(t, "g1", fields["departure_id"])
	assert.Equal(t, int64(1), fields["supplier_links"])
	assert.Equal(t, int64(2), fields["cost_lines"])
	assert.Equal(t, 1, logs.FilterMessage("Planned action").Len())
}
