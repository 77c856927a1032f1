package styles

import (
	"fmt"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/s2_signals"
)

// ⭐ SSOT: 스타일 → 팩터 구성은 여기서만
var table = map[contracts.Style][]s2_signals.Factor{
	contracts.StyleValue: {
		s2_signals.FactorEarningsStability,
		s2_signals.FactorBalanceSheet,
		s2_signals.FactorValuation,
	},
	contracts.StyleGrowth: {
		s2_signals.FactorGrowthMomentum,
		s2_signals.FactorEarningsStability,
	},
	contracts.StyleQuality: {
		s2_signals.FactorBalanceSheet,
		s2_signals.FactorCashFlow,
		s2_signals.FactorEarningsStability,
	},
	contracts.StyleSentiment: {
		s2_signals.FactorInsiderActivity,
		s2_signals.FactorNewsSentiment,
	},
	contracts.StyleRisk: {
		s2_signals.FactorRiskVolatility,
	},
}

// All returns every style in panel order
func All() []contracts.Style {
	return []contracts.Style{
		contracts.StyleValue,
		contracts.StyleGrowth,
		contracts.StyleQuality,
		contracts.StyleSentiment,
		contracts.StyleRisk,
	}
}

// Known reports whether the style has a factor list
func Known(style contracts.Style) bool {
	_, ok := table[style]
	return ok
}

// FactorsFor returns the style's factors in evaluation order
func FactorsFor(style contracts.Style) []s2_signals.Factor {
	factors := table[style]
	out := make([]s2_signals.Factor, len(factors))
	copy(out, factors)
	return out
}

// Run scores every factor of the style and aggregates them into a bundle
// The returned error is only a *contracts.ComputationError (or nil);
// the bundle is usable either way.
func Run(style contracts.Style, record *contracts.MetricRecord, th Thresholds) (contracts.StyleBundle, error) {
	code := ""
	if record != nil {
		code = record.Code
	}

	factors, ok := table[style]
	if !ok {
		return contracts.StyleBundle{
			Code:      code,
			Style:     style,
			Signal:    contracts.SignalNeutral,
			Breakdown: map[string]contracts.FactorScore{},
			Details:   []string{fmt.Sprintf("unknown style %q", style)},
		}, nil
	}

	scores := make([]contracts.NamedScore, 0, len(factors))
	for _, f := range factors {
		scores = append(scores, contracts.NamedScore{Name: string(f), Score: s2_signals.Score(f, record)})
	}
	return Aggregate(code, style, scores, th)
}
