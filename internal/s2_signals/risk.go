package s2_signals

import (
	"math"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// RiskVolatility scores leverage and price volatility (max 6)
// Low debt/equity and calm daily returns both score high.
func RiskVolatility(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	if debt, equity, ok := latestPair(r, contracts.FieldTotalDebt, contracts.FieldEquity); !ok {
		c.skip("debt/equity unavailable: missing total debt or equity")
	} else if equity <= 0 {
		c.skip("debt/equity undefined: equity %.2f", equity)
	} else {
		de := debt / equity
		switch {
		case de <= 0.3:
			c.add(3, 3, "low leverage: debt/equity %.2f", de)
		case de <= 0.6:
			c.add(2, 3, "moderate leverage: debt/equity %.2f", de)
		case de <= 1.0:
			c.add(1, 3, "elevated leverage: debt/equity %.2f", de)
		default:
			c.add(0, 3, "high leverage: debt/equity %.2f", de)
		}
	}

	if vol, ok := dailyVolatility(r.Closes()); !ok {
		c.skip("volatility unavailable: need at least 2 closes")
	} else {
		switch {
		case vol <= 0.01:
			c.add(3, 3, "low volatility: daily stdev %.2f%%", pct(vol))
		case vol <= 0.02:
			c.add(2, 3, "moderate volatility: daily stdev %.2f%%", pct(vol))
		case vol <= 0.03:
			c.add(1, 3, "elevated volatility: daily stdev %.2f%%", pct(vol))
		default:
			c.add(0, 3, "high volatility: daily stdev %.2f%%", pct(vol))
		}
	}

	return c.result()
}

// dailyVolatility is the population standard deviation of daily returns
// Returns after a zero close are undefined and left out.
func dailyVolatility(closes []float64) (float64, bool) {
	if len(closes) < 2 {
		return 0, false
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if ret, ok := ratio(closes[i]-closes[i-1], closes[i-1]); ok {
			returns = append(returns, ret)
		}
	}
	if len(returns) == 0 {
		return 0, false
	}

	var mean float64
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	var variance float64
	for _, ret := range returns {
		variance += (ret - mean) * (ret - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance), true
}
