package compute

import (
	"testing"
	"time"

	"github.com/farmtrack/farmtrack/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// completedSeq builds a completed raid history from loot totals, oldest
// first, one minute apart.
func completedSeq(loot ...int64) []types.RaidEntry {
	entries := make([]types.RaidEntry, len(loot))
	for i, l := range loot {
		entries[i] = types.RaidEntry{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			TotalLoot: l,
		}
	}
	return entries
}

func TestRecompute_EmptyHistory(t *testing.T) {
	m := Recompute(nil, 10)
	if m.AvgLootPerRaid != 0 || m.ConsecutiveEmpty != 0 || m.ConsecutiveLosses != 0 {
		t.Errorf("empty history: got %+v, want zeroes", m)
	}
	if !m.LastRaidAt.IsZero() {
		t.Errorf("LastRaidAt: got %v, want zero", m.LastRaidAt)
	}
	if m.LootTrend != types.TrendStable {
		t.Errorf("LootTrend: got %q, want stable", m.LootTrend)
	}
}

func TestRecompute_IgnoresPending(t *testing.T) {
	history := completedSeq(100, 200)
	history = append(history, types.RaidEntry{Timestamp: t0.Add(time.Hour), Pending: true})

	m := Recompute(history, 0)
	if m.AvgLootPerRaid != 150 {
		t.Errorf("AvgLootPerRaid: got %d, want 150 (pending excluded)", m.AvgLootPerRaid)
	}
	if !m.LastRaidAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("LastRaidAt: got %v, want last completed entry", m.LastRaidAt)
	}
}

func TestRecompute_AvgRounds(t *testing.T) {
	// (100 + 101 + 101) / 3 = 100.67 → 101
	m := Recompute(completedSeq(100, 101, 101), 0)
	if m.AvgLootPerRaid != 101 {
		t.Errorf("AvgLootPerRaid: got %d, want 101", m.AvgLootPerRaid)
	}
}

func TestConsecutiveEmpty_StopsAtNonEmpty(t *testing.T) {
	// Newest entry is non-empty: no streak, regardless of what came before.
	m := Recompute(completedSeq(0, 0, 0, 80), 0)
	if m.ConsecutiveEmpty != 0 {
		t.Errorf("ConsecutiveEmpty: got %d, want 0", m.ConsecutiveEmpty)
	}
}

func TestConsecutiveEmpty_TrailingRun(t *testing.T) {
	m := Recompute(completedSeq(80, 0, 0), 0)
	if m.ConsecutiveEmpty != 2 {
		t.Errorf("ConsecutiveEmpty: got %d, want 2", m.ConsecutiveEmpty)
	}
}

func TestConsecutiveEmpty_ThresholdIsExclusive(t *testing.T) {
	// 49 is empty, exactly 50 is not.
	m := Recompute(completedSeq(100, 49, 49), 0)
	if m.ConsecutiveEmpty != 2 {
		t.Errorf("ConsecutiveEmpty below threshold: got %d, want 2", m.ConsecutiveEmpty)
	}
	m = Recompute(completedSeq(100, 50), 0)
	if m.ConsecutiveEmpty != 0 {
		t.Errorf("ConsecutiveEmpty at threshold: got %d, want 0", m.ConsecutiveEmpty)
	}
}

func TestConsecutiveLosses_BackwardScan(t *testing.T) {
	history := completedSeq(100, 100, 100, 100)
	history[1].TotalLosses = 3 // broken by the clean raid at index 2
	history[3].TotalLosses = 1

	m := Recompute(history, 0)
	if m.ConsecutiveLosses != 1 {
		t.Errorf("ConsecutiveLosses: got %d, want 1", m.ConsecutiveLosses)
	}
}

func TestProfitPerHour(t *testing.T) {
	tests := []struct {
		name     string
		avg      int64
		distance int
		want     int64
	}{
		{"zero distance", 100, 0, 0},
		{"zero loot", 0, 10, 0},
		// distance 19 → round trip 2h → 380/2 = 190
		{"two hour round trip", 380, 19, 190},
		// distance 1 → round trip 0.105h, floored to 0.5h → 100/0.5 = 200
		{"round trip floored", 100, 1, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := completedSeq(tt.avg)
			if got := Recompute(history, tt.distance).ProfitPerHour; got != tt.want {
				t.Errorf("ProfitPerHour: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLootTrend(t *testing.T) {
	tests := []struct {
		name string
		loot []int64
		want types.Trend
	}{
		{"too few completed", []int64{100, 100, 100, 100, 100, 100, 100, 100, 100}, types.TrendStable},
		// older 5 sum = 500, recent 5 sum = 700 > 600 → rising
		{"rising", []int64{100, 100, 100, 100, 100, 140, 140, 140, 140, 140}, types.TrendRising},
		// recent 5 sum = 300 < 400 → declining
		{"declining", []int64{100, 100, 100, 100, 100, 60, 60, 60, 60, 60}, types.TrendDeclining},
		// recent = older → stable
		{"flat", []int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}, types.TrendStable},
		// recent = 600, not strictly above older*1.2 = 600 → stable
		{"rising boundary", []int64{100, 100, 100, 100, 100, 120, 120, 120, 120, 120}, types.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recompute(completedSeq(tt.loot...), 0).LootTrend; got != tt.want {
				t.Errorf("LootTrend: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLootTrend_UsesLastTenOfLongerHistory(t *testing.T) {
	// 12 completed entries; only the last 10 matter. The huge early values
	// must not affect the comparison.
	loot := []int64{9000, 9000, 100, 100, 100, 100, 100, 140, 140, 140, 140, 140}
	if got := Recompute(completedSeq(loot...), 0).LootTrend; got != types.TrendRising {
		t.Errorf("LootTrend: got %q, want rising", got)
	}
}

func TestLastActivity(t *testing.T) {
	rec := &types.TargetRecord{DiscoveredAt: t0}
	if got := LastActivity(rec); !got.Equal(t0) {
		t.Errorf("never raided: got %v, want discovery time", got)
	}
	rec.Metrics.LastRaidAt = t0.Add(time.Hour)
	if got := LastActivity(rec); !got.Equal(t0.Add(time.Hour)) {
		t.Errorf("raided: got %v, want last raid time", got)
	}
}
