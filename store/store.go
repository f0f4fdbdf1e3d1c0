package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/farmtrack/farmtrack/compute"
	"github.com/farmtrack/farmtrack/config"
	"github.com/farmtrack/farmtrack/kv"
	"github.com/farmtrack/farmtrack/rules"
	"github.com/farmtrack/farmtrack/types"
)

// DefaultSnapshotKey is the kv key the snapshot is persisted under when no
// key option is given. One key per tracked game world.
const DefaultSnapshotKey = "farmtrack/targets"

// Store is the target record store. All exported methods are safe for
// concurrent use; a single mutex guards the whole map.
type Store struct {
	blobs kv.Store
	key   string
	log   *slog.Logger
	now   func() time.Time // injectable for deterministic tests

	mu       sync.RWMutex
	settings config.Settings
	rules    *rules.Engine
	targets  map[types.Coord]*types.TargetRecord
	global   types.GlobalStats
	dirty    bool
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshotKey sets the kv key the snapshot is stored under.
func WithSnapshotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithSettings sets the initial thresholds (merged over defaults).
func WithSettings(settings config.Settings) Option {
	return func(s *Store) { s.settings = settings.Merge() }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store persisting through blobs. Call Load to pick up
// previously persisted state.
func New(blobs kv.Store, opts ...Option) *Store {
	s := &Store{
		blobs:    blobs,
		key:      DefaultSnapshotKey,
		log:      slog.Default(),
		now:      time.Now,
		settings: config.Defaults(),
		targets:  make(map[types.Coord]*types.TargetRecord),
		global:   types.GlobalStats{TroopLosses: make(map[string]int64)},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rules = rules.New(s.settings, s.log)
	return s
}

// Settings returns the current thresholds.
func (s *Store) Settings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings swaps the thresholds, e.g. from a config.Watch callback,
// and marks the store dirty so they persist.
func (s *Store) UpdateSettings(settings config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Merge()
	s.rules.SetSettings(s.settings)
	s.dirty = true
	s.log.Info("settings updated",
		"cleanup_days", s.settings.CleanupDays,
		"max_empty_before_pause", s.settings.MaxEmptyBeforePause,
		"max_losses_before_blacklist", s.settings.MaxLossesBeforeBlacklist,
		"dry_pause_hours", s.settings.DryPauseHours,
	)
}

// RecordRaidSent records that a raid left for coord: the target is created
// on first touch, a pending history entry is appended (evicting the oldest
// entry past the cap) and the global raid counters advance.
func (s *Store) RecordRaidSent(coord types.Coord, troops map[string]int, at time.Time, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(coord, source)
	entry := types.RaidEntry{
		Timestamp:  at,
		TroopsSent: copyCounts(troops),
		Source:     source,
		Pending:    true,
	}
	rec.RaidHistory = append(rec.RaidHistory, entry)
	if len(rec.RaidHistory) > types.MaxRaidHistory {
		rec.RaidHistory = rec.RaidHistory[len(rec.RaidHistory)-types.MaxRaidHistory:]
	}

	s.global.TotalRaids++
	if s.global.FirstRaidAt.IsZero() {
		s.global.FirstRaidAt = at
	}
	if at.After(s.global.LastRaidAt) {
		s.global.LastRaidAt = at
	}
	s.dirty = true

	s.log.Debug("raid sent", "coord", coord, "source", source)
}

// Result is the outcome of a previously sent raid.
type Result struct {
	Loot       types.Resources
	TroopsLost map[string]int
	BountyFull bool
}

// RecordRaidResult resolves the most recent pending history entry for
// coord with the raid outcome, folds the outcome into the global stats and
// recomputes the target's metrics, status and score.
//
// If the target is unknown or has no pending entry the result is dropped:
// the caller cannot correlate results to sends, so a late or duplicate
// result is indistinguishable from a stray one. Note that when several
// sends are in flight the most recent pending entry is resolved, which may
// be out of order relative to the sends.
func (s *Store) RecordRaidResult(coord types.Coord, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.targets[coord]
	if !ok {
		s.log.Debug("raid result for unknown target, dropped", "coord", coord)
		return
	}

	// Backward scan for the most recent pending entry.
	idx := -1
	for i := len(rec.RaidHistory) - 1; i >= 0; i-- {
		if rec.RaidHistory[i].Pending {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Debug("raid result with no pending raid, dropped", "coord", coord)
		return
	}

	entry := &rec.RaidHistory[idx]
	entry.Loot = res.Loot
	entry.TotalLoot = res.Loot.Total()
	entry.TroopsLost = copyCounts(res.TroopsLost)
	entry.TotalLosses = sumCounts(res.TroopsLost)
	entry.BountyFull = res.BountyFull
	entry.Pending = false

	s.global.TotalLoot = s.global.TotalLoot.Add(res.Loot)
	for kind, n := range res.TroopsLost {
		s.global.TroopLosses[kind] += int64(n)
	}

	now := s.now()
	rec.Metrics = compute.Recompute(rec.RaidHistory, rec.Distance)
	s.rules.Evaluate(rec, now)
	rec.Score = compute.Score(rec.Metrics, rec.Distance, s.population())
	s.dirty = true

	s.log.Debug("raid result recorded",
		"coord", coord,
		"loot", entry.TotalLoot,
		"losses", entry.TotalLosses,
		"status", rec.Status,
		"score", rec.Score,
	)
}

// Info carries a metadata update; nil fields are left untouched.
type Info struct {
	Name            *string
	Population      *int
	Distance        *int
	DiscoverySource *string
}

// UpdateTargetInfo creates the target if absent and applies the fields
// present in info. Metadata updates do not trigger a rescore; callers
// doing batch updates follow up with RecomputeAllScores.
func (s *Store) UpdateTargetInfo(coord types.Coord, info Info) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := ""
	if info.DiscoverySource != nil {
		source = *info.DiscoverySource
	}
	rec := s.ensure(coord, source)

	if info.Name != nil {
		rec.Name = *info.Name
	}
	if info.Population != nil {
		rec.Population = *info.Population
	}
	if info.Distance != nil {
		rec.Distance = *info.Distance
	}
	if info.DiscoverySource != nil {
		rec.DiscoverySource = *info.DiscoverySource
	}
	s.dirty = true
}

// PauseTarget manually pauses a target until the given time. A zero until
// pauses indefinitely (only a manual reactivation or a rule resumes it).
func (s *Store) PauseTarget(coord types.Coord, reason string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.targets[coord]
	if !ok {
		return
	}
	rec.Status = types.StatusPaused
	if reason == "" {
		reason = types.ReasonManual
	}
	rec.PauseReason = reason
	rec.PauseUntil = until
	s.dirty = true
	s.log.Info("target paused manually", "coord", coord, "reason", reason, "until", until)
}

// BlacklistTarget manually blacklists a target.
func (s *Store) BlacklistTarget(coord types.Coord, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.targets[coord]
	if !ok {
		return
	}
	rec.Status = types.StatusBlacklisted
	if reason == "" {
		reason = types.ReasonManual
	}
	rec.PauseReason = reason
	rec.PauseUntil = time.Time{}
	s.dirty = true
	s.log.Info("target blacklisted manually", "coord", coord, "reason", reason)
}

// ReactivateTarget manually re-activates a target and resets its loss and
// empty streaks so the rules do not immediately re-trigger.
func (s *Store) ReactivateTarget(coord types.Coord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.targets[coord]
	if !ok {
		return
	}
	rec.Status = types.StatusActive
	rec.PauseReason = ""
	rec.PauseUntil = time.Time{}
	rec.Metrics.ConsecutiveEmpty = 0
	rec.Metrics.ConsecutiveLosses = 0
	s.dirty = true
	s.log.Info("target re-activated manually", "coord", coord)
}

// RecomputeAllScores re-derives every target's score in one pass over the
// current population. Needed after batch metadata changes where the
// per-result recompute did not run.
func (s *Store) RecomputeAllScores() {
	s.mu.Lock()
	defer s.mu.Unlock()

	pop := s.population()
	for _, rec := range s.targets {
		rec.Score = compute.Score(rec.Metrics, rec.Distance, pop)
	}
	s.dirty = true
}

// Get returns a copy of the record at coord, or nil if untracked.
func (s *Store) Get(coord types.Coord) *types.TargetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.targets[coord]
	if !ok {
		return nil
	}
	return rec.Clone()
}

// Len returns the number of tracked targets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.targets)
}

// Targets returns copies of all tracked records, in no particular order.
func (s *Store) Targets() []*types.TargetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.TargetRecord, 0, len(s.targets))
	for _, rec := range s.targets {
		out = append(out, rec.Clone())
	}
	return out
}

// ActiveTargets resolves expired pauses first (time passing alone can end a
// pause, without any new raid) and then returns copies of all active
// records.
func (s *Store) ActiveTargets() []*types.TargetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]*types.TargetRecord, 0, len(s.targets))
	for _, rec := range s.targets {
		if s.rules.ResolveExpiredPause(rec, now) {
			s.dirty = true
		}
		if rec.Status == types.StatusActive {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Global returns a snapshot of the global raid statistics.
func (s *Store) Global() types.GlobalStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global.Clone()
}

// StatusCounts returns the number of targets per status.
func (s *Store) StatusCounts() map[types.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[types.Status]int, 3)
	for _, rec := range s.targets {
		counts[rec.Status]++
	}
	return counts
}

// ensure returns the record at coord, creating it active on first touch.
// Caller holds the write lock.
func (s *Store) ensure(coord types.Coord, source string) *types.TargetRecord {
	if rec, ok := s.targets[coord]; ok {
		return rec
	}
	rec := &types.TargetRecord{
		Coord:           coord,
		Status:          types.StatusActive,
		Metrics:         types.Metrics{LootTrend: types.TrendStable},
		DiscoveredAt:    s.now(),
		DiscoverySource: source,
	}
	s.targets[coord] = rec
	s.log.Debug("target discovered", "coord", coord, "source", source)
	return rec
}

// population builds the score normalization maxima over the live records.
// Caller holds at least the read lock.
func (s *Store) population() compute.Population {
	all := make([]*types.TargetRecord, 0, len(s.targets))
	for _, rec := range s.targets {
		all = append(all, rec)
	}
	return compute.PopulationOf(all)
}

func copyCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func sumCounts(m map[string]int) int {
	var n int
	for _, v := range m {
		n += v
	}
	return n
}
