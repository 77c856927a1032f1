package s2_signals

import (
	"math"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// quote is the resolved per-share price, market cap and share count
type quote struct {
	price, marketCap, shares          float64
	hasPrice, hasMarketCap, hasShares bool
}

// resolveQuote derives price = market cap / shares, falling back to the
// latest close, and market cap = price × shares when it is missing
func resolveQuote(r *contracts.MetricRecord) quote {
	var q quote

	if shares, ok := r.Latest(contracts.FieldSharesOutstanding); ok && shares > 0 {
		q.shares, q.hasShares = shares, true
	}
	if r.MarketCap != nil {
		q.marketCap, q.hasMarketCap = *r.MarketCap, true
	}

	if q.hasMarketCap && q.hasShares {
		q.price, q.hasPrice = ratio(q.marketCap, q.shares)
	}
	if !q.hasPrice {
		if closes := r.Closes(); len(closes) > 0 && closes[len(closes)-1] > 0 {
			q.price, q.hasPrice = closes[len(closes)-1], true
		}
	}

	if !q.hasMarketCap && q.hasPrice && q.hasShares {
		q.marketCap, q.hasMarketCap = q.price*q.shares, true
	}
	return q
}

// Valuation scores net-net and Graham-number margins of safety (max 7)
func Valuation(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard
	q := resolveQuote(r)

	// NCAV = 유동자산 - 총부채
	if assets, liabilities, ok := latestPair(r, contracts.FieldCurrentAssets, contracts.FieldTotalLiabilities); !ok {
		c.skip("NCAV unavailable: missing current assets or total liabilities")
	} else {
		ncav := assets - liabilities
		switch {
		case q.hasMarketCap && ncav > q.marketCap:
			c.add(4, 4, "net-net: NCAV %.0f exceeds market cap %.0f", ncav, q.marketCap)
		case q.hasShares && q.hasPrice:
			perShare := ncav / q.shares
			if perShare >= q.price*2/3 {
				c.add(2, 4, "NCAV per share %.2f at least 2/3 of price %.2f", perShare, q.price)
			} else {
				c.add(0, 4, "NCAV per share %.2f below 2/3 of price %.2f", perShare, q.price)
			}
		case q.hasMarketCap:
			c.add(0, 4, "NCAV %.0f below market cap %.0f", ncav, q.marketCap)
		default:
			c.skip("NCAV check skipped: no market cap or price")
		}
	}

	eps, epsOK := r.Latest(contracts.FieldEPS)
	bvps, bvpsOK := r.Latest(contracts.FieldBookValuePerShare)
	switch {
	case !epsOK || !bvpsOK:
		c.skip("Graham number unavailable: missing EPS or book value per share")
	case eps <= 0 || bvps <= 0:
		c.skip("Graham number undefined: EPS %.2f, book value per share %.2f", eps, bvps)
	case !q.hasPrice:
		c.skip("Graham margin skipped: no price")
	default:
		graham := math.Sqrt(22.5 * eps * bvps)
		margin, ok := ratio(graham-q.price, graham)
		if !ok {
			c.skip("Graham margin undefined")
			break
		}
		switch {
		case margin >= 0.5:
			c.add(3, 3, "price %.2f is %.1f%% below Graham number %.2f", q.price, pct(margin), graham)
		case margin >= 0.2:
			c.add(1, 3, "moderate margin of safety %.1f%% vs Graham number %.2f", pct(margin), graham)
		default:
			c.add(0, 3, "thin margin of safety %.1f%% vs Graham number %.2f", pct(margin), graham)
		}
	}

	return c.result()
}
