// Package telemetry exposes the engine's population and raid totals as
// Prometheus metrics. The collector is pull-based: every scrape reads the
// current store state, so no counters need updating on the hot path.
package telemetry
