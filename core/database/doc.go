// Package database handles database connections and schema inspection.
//
// It wraps GORM and opens either MySQL (production) or SQLite (tests, local
// runs) depending on Config.Driver.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table in a dialect-neutral shape. The
// server integrity check uses it to compare the departure tables with the
// models declared in feature/departures/models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "departures")
package database
