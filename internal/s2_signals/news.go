package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// NewsSentiment scores the share of positive headlines (max 3)
// Neutral items are ignored.
func NewsSentiment(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	var positive, negative int
	for _, n := range r.News {
		switch n.Sentiment {
		case contracts.NewsPositive:
			positive++
		case contracts.NewsNegative:
			negative++
		}
	}

	if positive+negative == 0 {
		c.skip("no news with a positive or negative label")
		return c.result()
	}

	share := float64(positive) / float64(positive+negative)
	switch {
	case share >= 0.7:
		c.add(3, 3, "news mostly positive: %d positive, %d negative", positive, negative)
	case share >= 0.55:
		c.add(2, 3, "news leaning positive: %d positive, %d negative", positive, negative)
	case share >= 0.45:
		c.add(1, 3, "news mixed: %d positive, %d negative", positive, negative)
	default:
		c.add(0, 3, "news mostly negative: %d positive, %d negative", positive, negative)
	}

	return c.result()
}
