package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Factor names one factor scorer
type Factor string

const (
	FactorEarningsStability Factor = "earnings_stability"
	FactorBalanceSheet      Factor = "balance_sheet"
	FactorValuation         Factor = "valuation"
	FactorGrowthMomentum    Factor = "growth_momentum"
	FactorInsiderActivity   Factor = "insider_activity"
	FactorNewsSentiment     Factor = "news_sentiment"
	FactorCashFlow          Factor = "cash_flow"
	FactorRiskVolatility    Factor = "risk_volatility"
)

// Scorer turns a metric record into a bounded factor score
// Scorers are pure: no I/O, no shared state, same input → same output.
type Scorer func(r *contracts.MetricRecord) contracts.FactorScore

// ⭐ SSOT: 팩터 → 스코어러 매핑은 여기서만
var scorers = map[Factor]Scorer{
	FactorEarningsStability: EarningsStability,
	FactorBalanceSheet:      BalanceSheet,
	FactorValuation:         Valuation,
	FactorGrowthMomentum:    GrowthMomentum,
	FactorInsiderActivity:   InsiderActivity,
	FactorNewsSentiment:     NewsSentiment,
	FactorCashFlow:          CashFlow,
	FactorRiskVolatility:    RiskVolatility,
}

// Factors returns every known factor in a stable order
func Factors() []Factor {
	return []Factor{
		FactorEarningsStability,
		FactorBalanceSheet,
		FactorValuation,
		FactorGrowthMomentum,
		FactorInsiderActivity,
		FactorNewsSentiment,
		FactorCashFlow,
		FactorRiskVolatility,
	}
}

// Valid reports whether f has a registered scorer
func (f Factor) Valid() bool {
	_, ok := scorers[f]
	return ok
}

// Score runs the scorer registered for f
// An unknown factor yields an empty score instead of panicking.
func Score(f Factor, r *contracts.MetricRecord) contracts.FactorScore {
	scorer, ok := scorers[f]
	if !ok {
		return contracts.FactorScore{Details: []string{fmt.Sprintf("unknown factor %q", f)}}
	}
	if r == nil {
		r = &contracts.MetricRecord{}
	}
	return scorer(r)
}

// scorecard accumulates sub-check results for one factor
// Skipped sub-checks only leave a detail; they add nothing to score or max.
type scorecard struct {
	score   int
	max     int
	details []string
}

func (c *scorecard) add(points, max int, format string, args ...interface{}) {
	c.score += points
	c.max += max
	c.details = append(c.details, fmt.Sprintf(format, args...))
}

func (c *scorecard) skip(format string, args ...interface{}) {
	c.details = append(c.details, fmt.Sprintf(format, args...))
}

func (c *scorecard) result() contracts.FactorScore {
	score := c.score
	if score < 0 {
		score = 0
	}
	if score > c.max {
		score = c.max
	}
	return contracts.FactorScore{Score: score, MaxScore: c.max, Details: c.details}
}

// ratio divides a by b; ok is false when b is zero or the result is not finite
func ratio(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// latestPair returns both fields from the most recent period where both are present
func latestPair(r *contracts.MetricRecord, fa, fb contracts.Field) (float64, float64, bool) {
	for i := len(r.Periods) - 1; i >= 0; i-- {
		a, b := fa(r.Periods[i]), fb(r.Periods[i])
		if a != nil && b != nil {
			return *a, *b, true
		}
	}
	return 0, 0, false
}

// growthPoints buckets a growth rate: >20% → 3, >10% → 2, >5% → 1
func growthPoints(g float64) int {
	switch {
	case g > 0.20:
		return 3
	case g > 0.10:
		return 2
	case g > 0.05:
		return 1
	}
	return 0
}

func pct(v float64) float64 {
	return v * 100
}
