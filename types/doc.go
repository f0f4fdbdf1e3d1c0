// Package types defines the shared domain types for the farm intelligence
// core: target records, raid history entries, derived metrics and global
// raid statistics. These are the canonical in-memory representations,
// separate from how the store serializes them.
package types
