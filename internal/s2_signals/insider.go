package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// InsiderActivity scores the share of insider buying (max 3)
func InsiderActivity(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	var bought, sold float64
	for _, t := range r.Insider {
		if t.Shares > 0 {
			bought += t.Shares
		} else {
			sold -= t.Shares
		}
	}

	if bought+sold == 0 {
		c.skip("no insider transactions")
		return c.result()
	}

	buyRatio := bought / (bought + sold)
	switch {
	case buyRatio >= 0.7:
		c.add(3, 3, "strong insider buying: %.0f%% of traded shares", pct(buyRatio))
	case buyRatio >= 0.55:
		c.add(2, 3, "moderate insider buying: %.0f%% of traded shares", pct(buyRatio))
	default:
		c.add(0, 3, "insider selling dominant: buys %.0f%% of traded shares", pct(buyRatio))
	}

	return c.result()
}
