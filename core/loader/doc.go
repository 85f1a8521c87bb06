// Package loader provides the feature loading system.
//
// Each feature implements Feature and registers its routes on the Fiber
// router handed to it. The Manager keeps features in registration order and
// LoadAll loads the enabled ones.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Features such as departures, snapshot and integrity are built and tested in
// isolation and only meet in cmd/start.go.
package loader
