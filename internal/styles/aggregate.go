package styles

import (
	"errors"
	"math"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// 비율 비교 허용 오차 (0.7 × 10 같은 부동소수 오차 흡수)
const ratioEpsilon = 1e-9

// Thresholds are the score ratios that turn a style bullish or bearish
type Thresholds struct {
	Bullish float64 `json:"bullish" yaml:"bullish"` // total ≥ Bullish × max
	Bearish float64 `json:"bearish" yaml:"bearish"` // total ≤ Bearish × max
}

// DefaultThresholds returns the standard 70% / 30% split
func DefaultThresholds() Thresholds {
	return Thresholds{Bullish: 0.70, Bearish: 0.30}
}

// Aggregate folds factor scores into one style bundle
// ⭐ SSOT: 스타일 시그널/신뢰도 산출은 여기서만
//
// confidence = round(100 × total / max); max = 0 means nothing was
// evaluated and yields neutral with confidence 0.
func Aggregate(code string, style contracts.Style, scores []contracts.NamedScore, th Thresholds) (contracts.StyleBundle, error) {
	bundle := contracts.StyleBundle{
		Code:      code,
		Style:     style,
		Signal:    contracts.SignalNeutral,
		Breakdown: make(map[string]contracts.FactorScore, len(scores)),
		Factors:   make([]string, 0, len(scores)),
	}

	var errs []error
	var total, possible int
	for _, ns := range scores {
		score := ns.Score
		if score.MaxScore < 0 || score.Score < 0 || score.Score > score.MaxScore {
			errs = append(errs, &contracts.ComputationError{Style: style, Factor: ns.Name, Value: float64(score.Score)})
			score = contracts.FactorScore{Details: []string{ns.Name + ": insufficient data (invalid score)"}}
		}

		bundle.Breakdown[ns.Name] = score
		bundle.Factors = append(bundle.Factors, ns.Name)
		bundle.Details = append(bundle.Details, score.Details...)
		total += score.Score
		possible += score.MaxScore
	}

	bundle.RawScore = float64(total)
	bundle.MaxScore = float64(possible)
	if possible == 0 {
		return bundle, errors.Join(errs...)
	}

	r := bundle.RawScore / bundle.MaxScore
	if math.IsNaN(r) || math.IsInf(r, 0) {
		errs = append(errs, &contracts.ComputationError{Style: style, Factor: "total", Value: r})
		return bundle, errors.Join(errs...)
	}

	bundle.Confidence = clampPercent(int(math.Round(100 * r)))
	switch {
	case r >= th.Bullish-ratioEpsilon:
		bundle.Signal = contracts.SignalBullish
	case r <= th.Bearish+ratioEpsilon:
		bundle.Signal = contracts.SignalBearish
	}

	return bundle, errors.Join(errs...)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
