package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndex_RegistersThreeKeys(t *testing.T) {
	d := Departure{ID: "d1", Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}
	idx := BuildIndex([]Departure{d})

	for _, key := range []string{"2025-06-02|TAP|2025-06-09", "2025-06-02|TAP|", "2025-06-02||"} {
		got, ok := idx.Lookup(key)
		assert.True(t, ok, key)
		assert.Equal(t, "d1", got.ID)
	}
	assert.Equal(t, 3, idx.Len())
}

func TestBuildIndex_FirstWriterWins(t *testing.T) {
	d1 := Departure{ID: "d1", Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}
	d2 := Departure{ID: "d2", Airline: "AF", DepartureDate: "2025-06-02", ReturnDate: "2025-06-10"}
	idx := BuildIndex([]Departure{d1, d2})

	got, ok := idx.Lookup("2025-06-02||")
	assert.True(t, ok)
	assert.Equal(t, "d1", got.ID)

	got, ok = idx.Lookup("2025-06-02|AF|")
	assert.True(t, ok)
	assert.Equal(t, "d2", got.ID)
}

func TestBuildIndex_NoDateOnlyFullKey(t *testing.T) {
	d := Departure{ID: "d1", Airline: "TAP"}
	idx := BuildIndex([]Departure{d})

	_, ok := idx.Lookup("|TAP|")
	assert.True(t, ok)
	_, ok = idx.Lookup("||")
	assert.False(t, ok)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_MatchLevels(t *testing.T) {
	d := Departure{ID: "d1", Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}
	idx := BuildIndex([]Departure{d})

	tests := []struct {
		name   string
		flight FlightSegment
		level  MatchLevel
		ok     bool
	}{
		{"Exact", FlightSegment{Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}, MatchExact, true},
		{"ReturnChanged", FlightSegment{Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-12"}, MatchAirline, true},
		{"AirlineChanged", FlightSegment{Airline: "TAP Portugal", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}, MatchDate, true},
		{"DateChanged", FlightSegment{Airline: "TAP", DepartureDate: "2025-06-03", ReturnDate: "2025-06-09"}, MatchNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, level, ok := idx.Match(tt.flight, map[string]struct{}{})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, level)
			if ok {
				assert.Equal(t, "d1", got.ID)
			}
		})
	}
}

func TestIndex_MatchSkipsClaimed(t *testing.T) {
	d1 := Departure{ID: "d1", Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}
	d2 := Departure{ID: "d2", Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}
	idx := BuildIndex([]Departure{d1, d2})
	f := FlightSegment{Airline: "TAP", DepartureDate: "2025-06-02", ReturnDate: "2025-06-09"}

	got, _, ok := idx.Match(f, map[string]struct{}{"d1": {}})
	assert.True(t, ok)
	assert.Equal(t, "d2", got.ID)

	_, _, ok = idx.Match(f, map[string]struct{}{"d1": {}, "d2": {}})
	assert.False(t, ok)
}
