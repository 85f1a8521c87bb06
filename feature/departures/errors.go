package departures

import "errors"

var (
	// ErrPackageNotFound is returned when no package has the requested id.
	ErrPackageNotFound = errors.New("package not found")
	// ErrDepartureNotFound is returned when no departure has the requested id.
	ErrDepartureNotFound = errors.New("departure not found")
	// ErrInvalidStatus is returned for an unknown package or departure status.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidInput is returned for malformed flights or child records.
	ErrInvalidInput = errors.New("invalid input")
)
