package consensus

import (
	"math"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Tiers are the percentage cut-offs for consensus strength
type Tiers struct {
	Strong        float64 `json:"strong" yaml:"strong"`                 // 단일 시그널 비중 ≥ Strong → strong
	Moderate      float64 `json:"moderate" yaml:"moderate"`             // ≥ Moderate → moderate
	DividedSpread float64 `json:"divided_spread" yaml:"divided_spread"` // max% - min% < spread → divided
}

// DefaultTiers returns 70 / 50 / 20
func DefaultTiers() Tiers {
	return Tiers{Strong: 70, Moderate: 50, DividedSpread: 20}
}

// tie-break priority: bullish > bearish > neutral
var priority = []contracts.Signal{
	contracts.SignalBullish,
	contracts.SignalBearish,
	contracts.SignalNeutral,
}

// Compute combines style bundles into one consensus
// ⭐ SSOT: 컨센서스 판정은 여기서만
//
// Only the signal counts matter, so the result does not depend on bundle order.
func Compute(code string, bundles []contracts.StyleBundle, tiers Tiers) contracts.ConsensusResult {
	result := contracts.ConsensusResult{
		Code:     code,
		Signal:   contracts.SignalNeutral,
		Strength: contracts.StrengthWeak,
	}

	counts := map[contracts.Signal]int{}
	for _, b := range bundles {
		s := b.Signal
		if !s.Valid() {
			s = contracts.SignalNeutral
		}
		counts[s]++
	}

	total := len(bundles)
	result.Counts = contracts.SignalCounts{
		Bullish: counts[contracts.SignalBullish],
		Bearish: counts[contracts.SignalBearish],
		Neutral: counts[contracts.SignalNeutral],
		Total:   total,
	}
	if total == 0 {
		return result
	}

	pcts := make(map[contracts.Signal]float64, len(priority))
	for _, s := range priority {
		pcts[s] = 100 * float64(counts[s]) / float64(total)
	}
	result.Percentages = contracts.SignalPercentages{
		Bullish: round1(pcts[contracts.SignalBullish]),
		Bearish: round1(pcts[contracts.SignalBearish]),
		Neutral: round1(pcts[contracts.SignalNeutral]),
	}

	// plurality with tie-break; strict > keeps the earlier (higher priority) signal
	winner := priority[0]
	for _, s := range priority[1:] {
		if pcts[s] > pcts[winner] {
			winner = s
		}
	}
	result.Signal = winner

	top := pcts[winner]
	switch {
	case top >= tiers.Strong:
		result.Strength = contracts.StrengthStrong
	case top >= tiers.Moderate:
		result.Strength = contracts.StrengthModerate
	case top-lowest(pcts) < tiers.DividedSpread:
		result.Strength = contracts.StrengthDivided
	default:
		result.Strength = contracts.StrengthWeak
	}

	return result
}

func lowest(pcts map[contracts.Signal]float64) float64 {
	low := math.Inf(1)
	for _, v := range pcts {
		if v < low {
			low = v
		}
	}
	return low
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
