package reconcile

// Index maps structural keys to existing departures.
//
// Each departure is registered under its full key, its date+airline key and its
// date-only key. Registration order is kept per key, so the first departure
// written under a key is the first candidate returned for it.
type Index struct {
	departures []Departure
	entries    map[string][]int
}

// BuildIndex indexes departures. Departures without a departure date are only
// registered under their full key.
func BuildIndex(departures []Departure) *Index {
	idx := &Index{
		departures: departures,
		entries:    make(map[string][]int, len(departures)*3),
	}

	for i, d := range departures {
		idx.register(DepartureKey(d), i)
		if d.DepartureDate != "" {
			idx.register(airlineKey(d.DepartureDate, d.Airline), i)
			idx.register(dateKey(d.DepartureDate), i)
		}
	}

	return idx
}

func (idx *Index) register(key string, i int) {
	slot := idx.entries[key]
	// An airline-less departure yields the same date+airline and date-only key.
	if n := len(slot); n > 0 && slot[n-1] == i {
		return
	}
	idx.entries[key] = append(slot, i)
}

// Lookup returns the first departure registered under key.
func (idx *Index) Lookup(key string) (Departure, bool) {
	slot := idx.entries[key]
	if len(slot) == 0 {
		return Departure{}, false
	}
	return idx.departures[slot[0]], true
}

// Match finds the departure for f, trying the exact key, then date+airline,
// then date only. Departures whose id is in claimed are skipped at every level.
func (idx *Index) Match(f FlightSegment, claimed map[string]struct{}) (Departure, MatchLevel, bool) {
	candidates := []struct {
		key   string
		level MatchLevel
	}{
		{FlightKey(f), MatchExact},
		{airlineKey(f.DepartureDate, f.Airline), MatchAirline},
		{dateKey(f.DepartureDate), MatchDate},
	}

	for _, c := range candidates {
		for _, i := range idx.entries[c.key] {
			d := idx.departures[i]
			if _, taken := claimed[d.ID]; taken {
				continue
			}
			return d, c.level, true
		}
	}

	return Departure{}, MatchNone, false
}

// Len returns the number of distinct keys in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}
