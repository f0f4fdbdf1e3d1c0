package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/farmtrack/farmtrack/compute"
	"github.com/farmtrack/farmtrack/config"
	"github.com/farmtrack/farmtrack/kv"
	"github.com/farmtrack/farmtrack/types"
)

// snapshotVersion tags the persisted blob schema. A mismatch on load is
// treated the same as absent data: the store starts fresh.
const snapshotVersion = 1

// snapshot is the persisted form of the store. Targets are keyed by the
// string form of their coordinate because JSON objects need string keys.
type snapshot struct {
	Version     int                            `json:"version"`
	Targets     map[string]*types.TargetRecord `json:"targets"`
	GlobalStats types.GlobalStats              `json:"global_stats"`
	Settings    config.Settings                `json:"settings"`
}

// Load replaces the in-memory state with the persisted snapshot. An absent
// blob, a version mismatch or a decode failure all mean "start fresh" and
// are logged, not returned: the engine must come up with best-available
// state no matter what the blob looks like. A kv fetch error likewise only
// logs, keeping whatever in-memory state already exists.
func (s *Store) Load(ctx context.Context) {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.log.Info("no persisted state, starting fresh", "key", s.key)
		return
	}
	if err != nil {
		s.log.Error("loading persisted state failed, keeping in-memory state",
			"key", s.key, "err", err)
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("persisted state undecodable, starting fresh",
			"key", s.key, "err", err)
		return
	}
	if snap.Version != snapshotVersion {
		s.log.Warn("persisted state has unknown version, starting fresh",
			"key", s.key, "version", snap.Version)
		return
	}

	targets := make(map[types.Coord]*types.TargetRecord, len(snap.Targets))
	for _, rec := range snap.Targets {
		targets[rec.Coord] = rec
	}
	if snap.GlobalStats.TroopLosses == nil {
		snap.GlobalStats.TroopLosses = make(map[string]int64)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = targets
	s.global = snap.GlobalStats
	s.settings = snap.Settings.Merge()
	s.rules.SetSettings(s.settings)
	s.dirty = false

	s.log.Info("persisted state loaded",
		"key", s.key,
		"targets", len(targets),
		"total_raids", snap.GlobalStats.TotalRaids,
	)
}

// Persist writes the snapshot through the kv store, but only when state
// changed since the last successful write. On failure the dirty flag stays
// set so the next call retries; the error is returned for observability
// but is safe to ignore.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	snap := snapshot{
		Version:     snapshotVersion,
		Targets:     make(map[string]*types.TargetRecord, len(s.targets)),
		GlobalStats: s.global,
		Settings:    s.settings,
	}
	for coord, rec := range s.targets {
		snap.Targets[coord.Key()] = rec
	}

	data, err := json.Marshal(snap)
	if err != nil {
		// Should not happen for our own types; keep dirty and surface it.
		s.log.Error("snapshot encode failed", "err", err)
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		s.log.Error("snapshot write failed, will retry on next persist",
			"key", s.key, "err", err)
		return fmt.Errorf("store: persist snapshot: %w", err)
	}

	s.dirty = false
	s.log.Debug("snapshot persisted", "key", s.key, "targets", len(s.targets), "bytes", len(data))
	return nil
}

// Cleanup removes every target whose last activity (last completed raid,
// or discovery time if never raided) is older than the cleanup threshold.
// It returns the number of targets removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.settings.CleanupAge())
	removed := 0
	for coord, rec := range s.targets {
		if compute.LastActivity(rec).Before(cutoff) {
			delete(s.targets, coord)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
		s.log.Info("stale targets removed", "count", removed, "remaining", len(s.targets))
	}
	return removed
}
