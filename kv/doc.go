// Package kv is the persistence boundary of the engine: a minimal blob
// store interface with a BadgerDB-backed implementation for durable state
// and an in-memory implementation for tests and ephemeral runs.
package kv
