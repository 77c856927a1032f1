package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Style projects a style bundle into the external result shape
// A bundle with nothing evaluated is reported as neutral/0.
func Style(b contracts.StyleBundle) contracts.Result {
	details := append([]string(nil), b.Details...)

	if !b.HasData() {
		reasoning := fmt.Sprintf("insufficient data for %s analysis", b.Style)
		if len(details) > 0 {
			reasoning += ": " + strings.Join(details, "; ")
		}
		return contracts.Result{
			Signal:     contracts.SignalNeutral,
			Confidence: 0,
			Reasoning:  reasoning,
			Details:    details,
		}
	}

	return contracts.Result{
		Signal:     b.Signal,
		Confidence: NormalizeConfidence(float64(b.Confidence), contracts.ScalePercent),
		Reasoning:  b.Reasoning(),
		Details:    details,
	}
}

// Consensus projects a consensus into the external result shape
// Confidence is the winning bucket's share, rounded.
func Consensus(c contracts.ConsensusResult) contracts.Result {
	if c.Counts.Total == 0 {
		return contracts.Result{
			Signal:     contracts.SignalNeutral,
			Confidence: 0,
			Reasoning:  "insufficient data: no style opinions available",
		}
	}

	n := c.Counts
	return contracts.Result{
		Signal:     c.Signal,
		Confidence: NormalizeConfidence(c.Percentage(c.Signal), contracts.ScalePercent),
		Reasoning: fmt.Sprintf("%s consensus (%s): %d bullish, %d bearish, %d neutral of %d styles",
			c.Signal, c.Strength, n.Bullish, n.Bearish, n.Neutral, n.Total),
		Details: []string{
			fmt.Sprintf("bullish %.1f%%", c.Percentages.Bullish),
			fmt.Sprintf("bearish %.1f%%", c.Percentages.Bearish),
			fmt.Sprintf("neutral %.1f%%", c.Percentages.Neutral),
		},
	}
}

// Panel projects the consensus, unless no style had any usable data
func Panel(c contracts.ConsensusResult, bundles []contracts.StyleBundle) contracts.Result {
	for _, b := range bundles {
		if b.HasData() {
			return Consensus(c)
		}
	}
	return contracts.Result{
		Signal:     contracts.SignalNeutral,
		Confidence: 0,
		Reasoning:  "insufficient data: no style had usable metrics",
	}
}

// NormalizeConfidence converts a confidence on the given scale to an integer 0 ~ 100
// ⭐ SSOT: 신뢰도 스케일 변환은 여기서만 (내부 기준은 0~100 정수)
func NormalizeConfidence(v float64, scale contracts.ConfidenceScale) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if scale == contracts.ScaleFraction {
		v *= 100
	}

	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// WithNarrative replaces the reasoning with narrator text when there is any
// Signal, confidence and rule-based details are never touched.
func WithNarrative(r contracts.Result, n *contracts.Narrative) contracts.Result {
	if n == nil || strings.TrimSpace(n.Reasoning) == "" {
		return r
	}
	out := r
	out.Details = append([]string(nil), r.Details...)
	out.Reasoning = strings.TrimSpace(n.Reasoning)
	return out
}

// Disagrees reports whether a narrative's own opinion differs from the rule-based result
// by signal or by more than tolerance confidence points.
func Disagrees(r contracts.Result, n contracts.Narrative, tolerance int) bool {
	if n.Signal.Valid() && n.Signal != r.Signal {
		return true
	}
	diff := NormalizeConfidence(n.Confidence, n.Scale) - r.Confidence
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}
