package compute

import (
	"math"
	"time"

	"github.com/farmtrack/farmtrack/types"
)

const (
	// emptyLootThreshold is the fixed cutoff below which a completed raid
	// counts as "empty" for the consecutive-empty streak.
	emptyLootThreshold = 50

	// referenceSpeed is the tiles-per-hour figure used to normalize
	// profit-per-hour across targets. It is a fixed reference, not any
	// particular unit's speed.
	referenceSpeed = 19.0

	// minRoundTripHours floors the round trip so nearby targets do not get
	// absurd hourly rates.
	minRoundTripHours = 0.5

	// trendWindow is how many completed raids are needed before a loot
	// trend is evaluated; below it the trend stays stable.
	trendWindow = 10
)

// Recompute derives a target's metrics from its raid history. Only
// completed (non-pending) entries count; order is the original append
// order, oldest first. distance is the target's tile distance from home.
func Recompute(history []types.RaidEntry, distance int) types.Metrics {
	completed := make([]types.RaidEntry, 0, len(history))
	for _, e := range history {
		if !e.Pending {
			completed = append(completed, e)
		}
	}

	m := types.Metrics{LootTrend: types.TrendStable}
	if len(completed) == 0 {
		return m
	}

	var totalLoot int64
	for _, e := range completed {
		totalLoot += e.TotalLoot
	}
	m.AvgLootPerRaid = int64(math.Round(float64(totalLoot) / float64(len(completed))))
	m.LastRaidAt = completed[len(completed)-1].Timestamp

	// Backward streaks: stop at the first entry that breaks the run.
	for i := len(completed) - 1; i >= 0; i-- {
		if completed[i].TotalLoot >= emptyLootThreshold {
			break
		}
		m.ConsecutiveEmpty++
	}
	for i := len(completed) - 1; i >= 0; i-- {
		if completed[i].TotalLosses == 0 {
			break
		}
		m.ConsecutiveLosses++
	}

	m.ProfitPerHour = profitPerHour(m.AvgLootPerRaid, distance)
	m.LootTrend = lootTrend(completed)
	return m
}

// profitPerHour normalizes average loot by the round trip to the target.
func profitPerHour(avgLoot int64, distance int) int64 {
	if distance <= 0 || avgLoot <= 0 {
		return 0
	}
	roundTrip := float64(distance) * 2 / referenceSpeed
	if roundTrip < minRoundTripHours {
		roundTrip = minRoundTripHours
	}
	return int64(math.Round(float64(avgLoot) / roundTrip))
}

// lootTrend compares the most recent five completed raids against the five
// before those. Fewer than trendWindow completed raids means stable.
func lootTrend(completed []types.RaidEntry) types.Trend {
	if len(completed) < trendWindow {
		return types.TrendStable
	}

	var recent, older int64
	n := len(completed)
	for _, e := range completed[n-5:] {
		recent += e.TotalLoot
	}
	for _, e := range completed[n-10 : n-5] {
		older += e.TotalLoot
	}

	switch {
	case float64(recent) > float64(older)*1.2:
		return types.TrendRising
	case float64(recent) < float64(older)*0.8:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// LastActivity is the timestamp cleanup reasons about: the last completed
// raid, or the discovery time if the target was never successfully raided.
func LastActivity(t *types.TargetRecord) time.Time {
	if !t.Metrics.LastRaidAt.IsZero() {
		return t.Metrics.LastRaidAt
	}
	return t.DiscoveredAt
}
