// Package takes persists the history of shadowing cycles in SQLite.
//
// Each cycle is one row keyed by its cycle id. Snapshots for a cycle arrive
// more than once (analysis first, mic take later, or the reverse), so Upsert
// only ever fills columns: a NULL in a later write never clears a value that
// an earlier write stored.
package takes
