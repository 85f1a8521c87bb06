package reconcile

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format shared by flight segments and departures.
const DateLayout = "2006-01-02"

const keySep = "|"

// FlightKey returns the structural key of a flight segment.
func FlightKey(f FlightSegment) string {
	return structuralKey(f.DepartureDate, f.Airline, f.ReturnDate)
}

// DepartureKey returns the structural key of a departure. Dates must already be
// rendered with DateLayout (see FormatDate).
func DepartureKey(d Departure) string {
	return structuralKey(d.DepartureDate, d.Airline, d.ReturnDate)
}

// airlineKey ignores the return date.
func airlineKey(date, airline string) string {
	return structuralKey(date, airline, "")
}

// dateKey ignores airline and return date.
func dateKey(date string) string {
	return structuralKey(date, "", "")
}

func structuralKey(date, airline, returnDate string) string {
	return date + keySep + airline + keySep + returnDate
}

// FormatDate renders t as a calendar date, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a calendar date. The empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

// FlightLabel returns the display label of a departure built from f.
func FlightLabel(f FlightSegment) string {
	return fmt.Sprintf("%s - depart %s", f.Airline, f.DepartureDate)
}

// HasStructureChanged reports whether the multiset of structural keys differs
// between previous and next. Reordering segments is not a change.
func HasStructureChanged(previous, next []FlightSegment) bool {
	if len(previous) != len(next) {
		return true
	}

	counts := make(map[string]int, len(previous))
	for _, f := range previous {
		counts[FlightKey(f)]++
	}
	for _, f := range next {
		key := FlightKey(f)
		if counts[key] == 0 {
			return true
		}
		counts[key]--
	}
	return false
}
