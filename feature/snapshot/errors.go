package snapshot

import "errors"

var (
	// ErrPackageNotFound is returned when the snapshot has no such package.
	ErrPackageNotFound = errors.New("package not found in snapshot")
	// ErrGroupNotFound is returned when the package has no such ops group.
	ErrGroupNotFound = errors.New("ops group not found")
	// ErrInvalidStatus is returned for a status outside the canonical enum.
	ErrInvalidStatus = errors.New("invalid status")
)
