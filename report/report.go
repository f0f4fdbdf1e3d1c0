package report

import (
	"sort"
	"time"

	"github.com/farmtrack/farmtrack/store"
	"github.com/farmtrack/farmtrack/types"
)

// DefaultProfitWindow is used by ProfitReport when no window is given.
const DefaultProfitWindow = 24 * time.Hour

// Facade aggregates over a Store without ever mutating records itself
// (resolving expired pauses on active-list reads is the store's job).
type Facade struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Facade over st.
func New(st *store.Store) *Facade {
	return &Facade{store: st, now: time.Now}
}

// Stats is the population overview: per-status counts plus the global raid
// totals.
type Stats struct {
	Targets     int               `json:"targets"`
	Active      int               `json:"active"`
	Paused      int               `json:"paused"`
	Blacklisted int               `json:"blacklisted"`
	Global      types.GlobalStats `json:"global"`
}

// ProfitSummary sums outcomes over completed raids inside a time window.
type ProfitSummary struct {
	Window      time.Duration   `json:"window"`
	Raids       int             `json:"raids"`
	Loot        types.Resources `json:"loot"`
	TotalLoot   int64           `json:"total_loot"`
	TroopLosses int             `json:"troop_losses"`
}

// ActiveTargets returns all active targets, with expired pauses resolved
// first.
func (f *Facade) ActiveTargets() []*types.TargetRecord {
	return f.store.ActiveTargets()
}

// RankedTargets returns up to n active targets sorted by score, highest
// first. Equal scores order by discovery time (oldest first), then by
// coordinate key, so the ranking is deterministic. n <= 0 returns all.
func (f *Facade) RankedTargets(n int) []*types.TargetRecord {
	active := f.store.ActiveTargets()
	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.DiscoveredAt.Equal(b.DiscoveredAt) {
			return a.DiscoveredAt.Before(b.DiscoveredAt)
		}
		return a.Coord.Key() < b.Coord.Key()
	})
	if n > 0 && len(active) > n {
		active = active[:n]
	}
	return active
}

// Stats returns the population overview.
func (f *Facade) Stats() Stats {
	counts := f.store.StatusCounts()
	return Stats{
		Targets:     f.store.Len(),
		Active:      counts[types.StatusActive],
		Paused:      counts[types.StatusPaused],
		Blacklisted: counts[types.StatusBlacklisted],
		Global:      f.store.Global(),
	}
}

// ProfitReport sums loot, raids and troop losses across all targets'
// completed history entries no older than window. A non-positive window
// means the default 24 hours. Pending entries never count.
func (f *Facade) ProfitReport(window time.Duration) ProfitSummary {
	if window <= 0 {
		window = DefaultProfitWindow
	}
	cutoff := f.now().Add(-window)

	sum := ProfitSummary{Window: window}
	for _, rec := range f.store.Targets() {
		for _, e := range rec.RaidHistory {
			if e.Pending || e.Timestamp.Before(cutoff) {
				continue
			}
			sum.Raids++
			sum.Loot = sum.Loot.Add(e.Loot)
			sum.TroopLosses += e.TotalLosses
		}
	}
	sum.TotalLoot = sum.Loot.Total()
	return sum
}

// IsBlacklisted reports whether the target at coord is blacklisted.
// Unknown targets are not.
func (f *Facade) IsBlacklisted(coord types.Coord) bool {
	rec := f.store.Get(coord)
	return rec != nil && rec.Status == types.StatusBlacklisted
}

// Target returns a copy of the record at coord, or nil if untracked.
func (f *Facade) Target(coord types.Coord) *types.TargetRecord {
	return f.store.Get(coord)
}
