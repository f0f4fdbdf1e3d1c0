package types

import (
	"fmt"
	"time"
)

// MaxRaidHistory caps the per-target rolling raid history. When a new entry
// would exceed the cap, the oldest entry is dropped (FIFO).
const MaxRaidHistory = 20

// Coord identifies a target by its map tile. It is comparable and used
// directly as a map key; Key is only needed where a string key is required
// (the persisted snapshot).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the canonical string form "x|y" used in the persisted blob.
func (c Coord) Key() string {
	return fmt.Sprintf("%d|%d", c.X, c.Y)
}

// String implements fmt.Stringer for log output.
func (c Coord) String() string {
	return fmt.Sprintf("(%d|%d)", c.X, c.Y)
}

// Status is a target's lifecycle state.
type Status string

const (
	StatusActive      Status = "active"
	StatusPaused      Status = "paused"
	StatusBlacklisted Status = "blacklisted"
)

// Well-known pause reasons. PauseReason is free-form; these are the values
// the rule engine and the manual transitions set.
const (
	ReasonDry    = "dry"
	ReasonLosses = "losses"
	ReasonManual = "manual"
)

// Trend describes the direction of a target's recent loot relative to the
// older half of its history window.
type Trend string

const (
	TrendRising    Trend = "rising"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Resources holds quantities of the four resource kinds.
type Resources struct {
	Wood int64 `json:"wood"`
	Clay int64 `json:"clay"`
	Iron int64 `json:"iron"`
	Crop int64 `json:"crop"`
}

// Total returns the sum across all four resources.
func (r Resources) Total() int64 {
	return r.Wood + r.Clay + r.Iron + r.Crop
}

// Add returns r with o folded in.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Wood: r.Wood + o.Wood,
		Clay: r.Clay + o.Clay,
		Iron: r.Iron + o.Iron,
		Crop: r.Crop + o.Crop,
	}
}

// RaidEntry is one recorded raid against a target. It is created pending
// when the raid is sent and completed in place when the result arrives.
type RaidEntry struct {
	Timestamp   time.Time      `json:"timestamp"`
	TroopsSent  map[string]int `json:"troops_sent"`
	Loot        Resources      `json:"loot"`
	TotalLoot   int64          `json:"total_loot"`
	TroopsLost  map[string]int `json:"troops_lost,omitempty"`
	TotalLosses int            `json:"total_losses"`
	BountyFull  bool           `json:"bounty_full"`
	Source      string         `json:"source,omitempty"`
	Pending     bool           `json:"pending"`
}

// Metrics is the derived view of a target's completed raid history. It is
// fully recomputed from the history on every result recording and never
// edited by hand.
type Metrics struct {
	AvgLootPerRaid    int64     `json:"avg_loot_per_raid"`
	LastRaidAt        time.Time `json:"last_raid_at"`
	ConsecutiveEmpty  int       `json:"consecutive_empty"`
	ConsecutiveLosses int       `json:"consecutive_losses"`
	ProfitPerHour     int64     `json:"profit_per_hour"`
	LootTrend         Trend     `json:"loot_trend"`
}

// TargetRecord is the full per-target state: identity, descriptive
// metadata, lifecycle status, rolling raid history and the derived
// metrics/score.
type TargetRecord struct {
	Coord           Coord       `json:"coord"`
	Name            string      `json:"name,omitempty"`
	Population      int         `json:"population,omitempty"`
	Distance        int         `json:"distance,omitempty"`
	Status          Status      `json:"status"`
	PauseReason     string      `json:"pause_reason,omitempty"`
	PauseUntil      time.Time   `json:"pause_until"`
	RaidHistory     []RaidEntry `json:"raid_history"`
	Metrics         Metrics     `json:"metrics"`
	Score           int         `json:"score"`
	DiscoveredAt    time.Time   `json:"discovered_at"`
	DiscoverySource string      `json:"discovery_source,omitempty"`
}

// Clone returns a deep copy safe to hand out to readers while the original
// keeps being mutated under the store lock.
func (t *TargetRecord) Clone() *TargetRecord {
	cp := *t
	cp.RaidHistory = make([]RaidEntry, len(t.RaidHistory))
	for i, e := range t.RaidHistory {
		cp.RaidHistory[i] = e.clone()
	}
	return &cp
}

func (e RaidEntry) clone() RaidEntry {
	cp := e
	cp.TroopsSent = copyCounts(e.TroopsSent)
	cp.TroopsLost = copyCounts(e.TroopsLost)
	return cp
}

// GlobalStats are running totals across all targets. They are only ever
// incremented — cleanup of individual targets does not roll them back.
type GlobalStats struct {
	TotalRaids  int64            `json:"total_raids"`
	TotalLoot   Resources        `json:"total_loot"`
	TroopLosses map[string]int64 `json:"troop_losses,omitempty"`
	FirstRaidAt time.Time        `json:"first_raid_at"`
	LastRaidAt  time.Time        `json:"last_raid_at"`
}

// Clone returns a copy with its own losses map.
func (g GlobalStats) Clone() GlobalStats {
	cp := g
	cp.TroopLosses = make(map[string]int64, len(g.TroopLosses))
	for k, v := range g.TroopLosses {
		cp.TroopLosses[k] = v
	}
	return cp
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
