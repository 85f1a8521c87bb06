// Package models holds the GORM models of the departures feature and their
// conversions to the reconcile domain types.
//
// The gorm column and type tags double as the expected schema for the server
// integrity check.
package models
