package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// CashFlow scores free cash flow consistency and trend (max 3)
func CashFlow(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	fcf := r.Series(contracts.FieldFreeCashFlow)
	if len(fcf) == 0 {
		c.skip("insufficient data: no free cash flow")
		return c.result()
	}

	positive := 0
	for _, v := range fcf {
		if v > 0 {
			positive++
		}
	}
	if positive*2 > len(fcf) {
		c.add(2, 2, "free cash flow positive in %d of %d periods", positive, len(fcf))
	} else {
		c.add(0, 2, "free cash flow positive in only %d of %d periods", positive, len(fcf))
	}

	if len(fcf) < 2 {
		c.skip("free cash flow trend unavailable: 1 period")
		return c.result()
	}

	earliest, latest := fcf[0], fcf[len(fcf)-1]
	if latest > earliest {
		c.add(1, 1, "free cash flow improved from %.0f to %.0f", earliest, latest)
	} else {
		c.add(0, 1, "free cash flow did not improve (%.0f → %.0f)", earliest, latest)
	}

	return c.result()
}
