package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/farmtrack/farmtrack/store"
	"github.com/farmtrack/farmtrack/types"
)

var (
	targetsDesc = prometheus.NewDesc(
		"farmtrack_targets",
		"Number of tracked targets by status.",
		[]string{"status"}, nil,
	)
	raidsSentDesc = prometheus.NewDesc(
		"farmtrack_raids_sent_total",
		"Total raids sent since tracking began.",
		nil, nil,
	)
	lootDesc = prometheus.NewDesc(
		"farmtrack_loot_total",
		"Cumulative loot by resource.",
		[]string{"resource"}, nil,
	)
	troopLossesDesc = prometheus.NewDesc(
		"farmtrack_troop_losses_total",
		"Cumulative troop losses by unit kind.",
		[]string{"unit"}, nil,
	)
)

// Collector implements prometheus.Collector over a target store. Register
// it with the caller's registry:
//
//	prometheus.MustRegister(telemetry.NewCollector(st))
type Collector struct {
	store *store.Store
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector reading from st.
func NewCollector(st *store.Store) *Collector {
	return &Collector{store: st}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- targetsDesc
	ch <- raidsSentDesc
	ch <- lootDesc
	ch <- troopLossesDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counts := c.store.StatusCounts()
	for _, status := range []types.Status{types.StatusActive, types.StatusPaused, types.StatusBlacklisted} {
		ch <- prometheus.MustNewConstMetric(
			targetsDesc, prometheus.GaugeValue,
			float64(counts[status]), string(status),
		)
	}

	global := c.store.Global()
	ch <- prometheus.MustNewConstMetric(
		raidsSentDesc, prometheus.CounterValue, float64(global.TotalRaids),
	)

	for resource, amount := range map[string]int64{
		"wood": global.TotalLoot.Wood,
		"clay": global.TotalLoot.Clay,
		"iron": global.TotalLoot.Iron,
		"crop": global.TotalLoot.Crop,
	} {
		ch <- prometheus.MustNewConstMetric(
			lootDesc, prometheus.CounterValue, float64(amount), resource,
		)
	}

	for unit, lost := range global.TroopLosses {
		ch <- prometheus.MustNewConstMetric(
			troopLossesDesc, prometheus.CounterValue, float64(lost), unit,
		)
	}
}
