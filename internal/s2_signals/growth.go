package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// GrowthMomentum scores revenue growth, EPS growth and price momentum (max 9)
// Each sub-check: >20% → +3, >10% → +2, >5% → +1.
func GrowthMomentum(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	periodGrowth(&c, "revenue", r.Series(contracts.FieldRevenue))
	periodGrowth(&c, "EPS", r.Series(contracts.FieldEPS))

	closes := r.Closes()
	switch {
	case len(closes) < 2:
		c.skip("price momentum unavailable: %d close(s)", len(closes))
	case closes[0] <= 0:
		c.skip("price momentum unavailable: starting close %.2f", closes[0])
	default:
		m := (closes[len(closes)-1] - closes[0]) / closes[0]
		c.add(growthPoints(m), 3, "price momentum %.1f%% over %d closes", pct(m), len(closes))
	}

	return c.result()
}

// periodGrowth compares the latest present value with the previous one
func periodGrowth(c *scorecard, name string, series []float64) {
	if len(series) < 2 {
		c.skip("%s growth unavailable: %d period(s)", name, len(series))
		return
	}

	prev, latest := series[len(series)-2], series[len(series)-1]
	if prev <= 0 {
		c.skip("%s growth undefined: previous value %.2f", name, prev)
		return
	}

	g := (latest - prev) / prev
	c.add(growthPoints(g), 3, "%s growth %.1f%%", name, pct(g))
}
