// Package snapshot holds the versioned application state: packages with their
// ops projects, bookings, and whatever else older clients stored.
//
// The state lives as one JSON blob in a Backend (a MinIO object or a MongoDB
// document). Manager loads it, upgrades it with core/migrate and writes it
// back when the schema version moved. From then on it is the single writer:
// typed mutations such as UpdateFlights and SetGroupStatus go through
// Manager.Update one at a time and are persisted before listeners see them.
//
// Keys the code does not know about are carried through untouched.
package snapshot
