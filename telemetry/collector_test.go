package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/farmtrack/farmtrack/kv"
	"github.com/farmtrack/farmtrack/store"
	"github.com/farmtrack/farmtrack/types"
)

func TestCollector(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := store.New(kv.NewMemoryStore(),
		store.WithClock(func() time.Time { return t0 }),
	)

	a := types.Coord{X: 1, Y: 1}
	b := types.Coord{X: 2, Y: 2}
	st.RecordRaidSent(a, nil, t0, "")
	st.RecordRaidResult(a, store.Result{
		Loot:       types.Resources{Wood: 120, Clay: 30},
		TroopsLost: map[string]int{"lc": 2},
	})
	st.RecordRaidSent(b, nil, t0, "")
	st.PauseTarget(b, "", time.Time{})

	want := `
# HELP farmtrack_loot_total Cumulative loot by resource.
# TYPE farmtrack_loot_total counter
farmtrack_loot_total{resource="clay"} 30
farmtrack_loot_total{resource="crop"} 0
farmtrack_loot_total{resource="iron"} 0
farmtrack_loot_total{resource="wood"} 120
# HELP farmtrack_raids_sent_total Total raids sent since tracking began.
# TYPE farmtrack_raids_sent_total counter
farmtrack_raids_sent_total 2
# HELP farmtrack_targets Number of tracked targets by status.
# TYPE farmtrack_targets gauge
farmtrack_targets{status="active"} 1
farmtrack_targets{status="blacklisted"} 0
farmtrack_targets{status="paused"} 1
# HELP farmtrack_troop_losses_total Cumulative troop losses by unit kind.
# TYPE farmtrack_troop_losses_total counter
farmtrack_troop_losses_total{unit="lc"} 2
`
	if err := testutil.CollectAndCompare(NewCollector(st), strings.NewReader(want)); err != nil {
		t.Errorf("CollectAndCompare: %v", err)
	}
}

func TestCollector_EmptyStore(t *testing.T) {
	st := store.New(kv.NewMemoryStore())

	// No targets and no losses: status gauges and resource counters are
	// still emitted at zero; the per-unit losses family has no samples.
	want := `
# HELP farmtrack_loot_total Cumulative loot by resource.
# TYPE farmtrack_loot_total counter
farmtrack_loot_total{resource="clay"} 0
farmtrack_loot_total{resource="crop"} 0
farmtrack_loot_total{resource="iron"} 0
farmtrack_loot_total{resource="wood"} 0
# HELP farmtrack_raids_sent_total Total raids sent since tracking began.
# TYPE farmtrack_raids_sent_total counter
farmtrack_raids_sent_total 0
# HELP farmtrack_targets Number of tracked targets by status.
# TYPE farmtrack_targets gauge
farmtrack_targets{status="active"} 0
farmtrack_targets{status="blacklisted"} 0
farmtrack_targets{status="paused"} 0
`
	if err := testutil.CollectAndCompare(NewCollector(st), strings.NewReader(want)); err != nil {
		t.Errorf("CollectAndCompare: %v", err)
	}
}
