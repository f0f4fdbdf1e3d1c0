// Package store owns the tracked-target map: creation on first touch,
// bounded raid history, raid outcome recording with metric/status/score
// recomputation, manual status transitions, stale-target cleanup and
// dirty-flagged persistence through a kv.Store.
//
// A single mutex serializes all mutation, so a raid result always resolves
// exactly one pending entry and score computation always sees a consistent
// population.
package store
