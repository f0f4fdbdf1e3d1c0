// Package config defines the tunable farming thresholds and how they are
// loaded: yaml parsed over hard-coded defaults, validated, and optionally
// hot-reloaded via a file watcher.
package config
