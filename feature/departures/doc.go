// Package departures is the relational side of the back office: packages with
// an ordered flight list, and the departures (ops groups) derived from it.
//
// Changing a package's flights runs core/reconcile against the stored
// departures and applies the resulting plan in one transaction: deletions
// cascade to supplier links, cost lines and timeline items, then matched
// departures are refreshed and new ones created. Status changes stamp or clear
// the validation date.
//
// # Routes
//
//	POST  /packages
//	GET   /packages/:id
//	PUT   /packages/:id/flights?dry_run=true
//	GET   /departures
//	PATCH /departures/:id/status
//	POST  /departures/:id/suppliers
//	POST  /departures/:id/cost-lines
//	POST  /departures/:id/timeline
package departures
