package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// EarningsStability scores EPS consistency and direction (max 3)
//   - all periods positive → +2, at least 80% positive → +1
//   - latest EPS above earliest EPS → +1
func EarningsStability(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	eps := r.Series(contracts.FieldEPS)
	if len(eps) < 2 {
		c.skip("insufficient data: %d EPS period(s), need at least 2", len(eps))
		return c.result()
	}

	positive := 0
	for _, v := range eps {
		if v > 0 {
			positive++
		}
	}

	share := float64(positive) / float64(len(eps))
	switch {
	case positive == len(eps):
		c.add(2, 2, "EPS positive in all %d periods", len(eps))
	case share >= 0.8:
		c.add(1, 2, "EPS positive in %d of %d periods", positive, len(eps))
	default:
		c.add(0, 2, "EPS positive in only %d of %d periods", positive, len(eps))
	}

	earliest, latest := eps[0], eps[len(eps)-1]
	if latest > earliest {
		c.add(1, 1, "EPS grew from %.2f to %.2f", earliest, latest)
	} else {
		c.add(0, 1, "EPS did not grow (%.2f → %.2f)", earliest, latest)
	}

	return c.result()
}
