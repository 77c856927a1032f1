package s0_data

import (
	"context"
	"math"
	"time"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/pkg/redis"
)

// CachedSource decorates a MetricsSource with a redis read-through cache
// When redis is disabled every call goes straight to the wrapped source.
// Values are JSON-encoded, so non-finite numbers are dropped before caching
// (NaN → nil, bad closes and trades removed) instead of failing the section.
type CachedSource struct {
	source contracts.MetricsSource
	cache  *redis.Cache
	ttl    time.Duration
}

// NewCachedSource creates a cached source
func NewCachedSource(source contracts.MetricsSource, cache *redis.Cache, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedSource{source: source, cache: cache, ttl: ttl}
}

// Lookup is never cached: an instrument can be delisted at any time
func (s *CachedSource) Lookup(ctx context.Context, code string) error {
	return s.source.Lookup(ctx, code)
}

func (s *CachedSource) Financials(ctx context.Context, code string, asOf time.Time, periods int) ([]contracts.RawPeriod, error) {
	var out []contracts.RawPeriod
	err := s.cache.GetOrSet(ctx, redis.FinancialKey(code, asOf, periods), &out, s.ttl, func() (interface{}, error) {
		rows, err := s.source.Financials(ctx, code, asOf, periods)
		return finitePeriods(rows), err
	})
	return out, err
}

func (s *CachedSource) Prices(ctx context.Context, code string, from, to time.Time) ([]contracts.PricePoint, error) {
	var out []contracts.PricePoint
	err := s.cache.GetOrSet(ctx, redis.PriceKey(code, from, to), &out, s.ttl, func() (interface{}, error) {
		prices, err := s.source.Prices(ctx, code, from, to)
		return finitePrices(prices), err
	})
	return out, err
}

func (s *CachedSource) MarketCap(ctx context.Context, code string, asOf time.Time) (*float64, error) {
	var out *float64
	err := s.cache.GetOrSet(ctx, redis.MarketCapKey(code, asOf), &out, s.ttl, func() (interface{}, error) {
		marketCap, err := s.source.MarketCap(ctx, code, asOf)
		return finite(marketCap), err
	})
	return out, err
}

func (s *CachedSource) InsiderTrades(ctx context.Context, code string, from, to time.Time) ([]contracts.InsiderTrade, error) {
	var out []contracts.InsiderTrade
	err := s.cache.GetOrSet(ctx, redis.InsiderKey(code, from, to), &out, s.ttl, func() (interface{}, error) {
		trades, err := s.source.InsiderTrades(ctx, code, from, to)
		return finiteTrades(trades), err
	})
	return out, err
}

func (s *CachedSource) News(ctx context.Context, code string, from, to time.Time) ([]contracts.NewsItem, error) {
	var out []contracts.NewsItem
	err := s.cache.GetOrSet(ctx, redis.NewsKey(code, from, to), &out, s.ttl, func() (interface{}, error) {
		return s.source.News(ctx, code, from, to)
	})
	return out, err
}

func finitePeriods(in []contracts.RawPeriod) []contracts.RawPeriod {
	if in == nil {
		return nil
	}
	out := make([]contracts.RawPeriod, len(in))
	for i, p := range in {
		p.EPS = finite(p.EPS)
		p.Revenue = finite(p.Revenue)
		p.BookValuePerShare = finite(p.BookValuePerShare)
		p.CurrentAssets = finite(p.CurrentAssets)
		p.CurrentLiabilities = finite(p.CurrentLiabilities)
		p.TotalAssets = finite(p.TotalAssets)
		p.TotalLiabilities = finite(p.TotalLiabilities)
		p.TotalDebt = finite(p.TotalDebt)
		p.Equity = finite(p.Equity)
		p.FreeCashFlow = finite(p.FreeCashFlow)
		p.Dividends = finite(p.Dividends)
		p.SharesOutstanding = finite(p.SharesOutstanding)
		out[i] = p
	}
	return out
}

func finitePrices(in []contracts.PricePoint) []contracts.PricePoint {
	if in == nil {
		return nil
	}
	out := make([]contracts.PricePoint, 0, len(in))
	for _, p := range in {
		if isFinite(p.Close) {
			out = append(out, p)
		}
	}
	return out
}

func finiteTrades(in []contracts.InsiderTrade) []contracts.InsiderTrade {
	if in == nil {
		return nil
	}
	out := make([]contracts.InsiderTrade, 0, len(in))
	for _, t := range in {
		if isFinite(t.Shares) {
			out = append(out, t)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
