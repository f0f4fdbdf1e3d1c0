package compute

import (
	"math"

	"github.com/farmtrack/farmtrack/types"
)

// Weight constants for the target score formula. They sum to 100.
const (
	weightProfit     = 40
	weightSafety     = 30
	weightEfficiency = 30

	// safetyPenalty is subtracted from the safety share per consecutive
	// lossy raid.
	safetyPenalty = 15
)

// Population holds the normalization maxima derived from every currently
// tracked target. Scores are relative to these, not to fixed constants, so
// the "best" target of the moment defines the top of the scale.
type Population struct {
	// MaxAvgLoot is the highest AvgLootPerRaid across all targets, floored
	// at 1 to avoid division by zero.
	MaxAvgLoot float64

	// MaxLootPerDistance is the highest AvgLootPerRaid/distance ratio
	// across all targets, same floor.
	MaxLootPerDistance float64
}

// PopulationOf builds the normalization maxima from a full set of targets.
func PopulationOf(targets []*types.TargetRecord) Population {
	p := Population{MaxAvgLoot: 1, MaxLootPerDistance: 1}
	for _, t := range targets {
		avg := float64(t.Metrics.AvgLootPerRaid)
		if avg > p.MaxAvgLoot {
			p.MaxAvgLoot = avg
		}
		if lpd := avg / float64(max(t.Distance, 1)); lpd > p.MaxLootPerDistance {
			p.MaxLootPerDistance = lpd
		}
	}
	return p
}

// Score computes one target's 0-100 score against the population maxima:
// a profit share (40), a safety share (30, reduced by recent losses) and a
// distance-efficiency share (30).
func Score(m types.Metrics, distance int, pop Population) int {
	avg := float64(m.AvgLootPerRaid)

	profit := int(math.Round(avg / pop.MaxAvgLoot * weightProfit))

	safety := weightSafety
	if m.ConsecutiveLosses > 0 {
		safety = max(0, weightSafety-m.ConsecutiveLosses*safetyPenalty)
	}

	lpd := avg / float64(max(distance, 1))
	efficiency := int(math.Round(lpd / pop.MaxLootPerDistance * weightEfficiency))

	return profit + safety + efficiency
}
