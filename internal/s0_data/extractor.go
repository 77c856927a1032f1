package s0_data

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// codePattern accepts exchange tickers (AAPL, BRK.B) and numeric codes (005930)
var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,14}$`)

// NormalizeCode trims and upper-cases an instrument code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode returns a DataError when code is not a usable identifier
func ValidateCode(code string) error {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return contracts.NewDataError(code, "empty instrument code", nil)
	}
	if !codePattern.MatchString(normalized) {
		return contracts.NewDataError(code, "malformed instrument code", nil)
	}
	return nil
}

// Extract normalizes a raw record into a MetricRecord
// ⭐ SSOT: 원천 데이터 정규화는 여기서만
//
// Missing values stay missing. Periods and prices are sorted oldest → newest and
// de-duplicated keeping the most recently filed value, then the most recent
// lookback periods are kept (lookback <= 0 keeps all).
func Extract(raw *contracts.RawRecord, lookback int) (*contracts.MetricRecord, error) {
	if raw == nil {
		return nil, contracts.NewDataError("", "no record", nil)
	}
	if err := ValidateCode(raw.Code); err != nil {
		return nil, err
	}

	record := &contracts.MetricRecord{
		Code:      NormalizeCode(raw.Code),
		AsOf:      raw.AsOf,
		MarketCap: nonNegative(raw.MarketCap),
		Periods:   extractPeriods(raw.Periods, lookback),
		Prices:    extractPrices(raw.Prices),
		Insider:   extractInsider(raw.Insider),
		News:      extractNews(raw.News),
	}

	return record, nil
}

func extractPeriods(raw []contracts.RawPeriod, lookback int) []contracts.Period {
	if len(raw) == 0 {
		return []contracts.Period{}
	}

	// Stable sort keeps input order among equal keys, so the later duplicate wins
	sorted := make([]contracts.RawPeriod, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PeriodEnd.Equal(sorted[j].PeriodEnd) {
			return sorted[i].PeriodEnd.Before(sorted[j].PeriodEnd)
		}
		return sorted[i].FiledAt.Before(sorted[j].FiledAt)
	})

	periods := make([]contracts.Period, 0, len(sorted))
	for _, p := range sorted {
		normalized := contracts.Period{
			PeriodEnd:          p.PeriodEnd,
			EPS:                finite(p.EPS),
			Revenue:            finite(p.Revenue),
			BookValuePerShare:  finite(p.BookValuePerShare),
			CurrentAssets:      finite(p.CurrentAssets),
			CurrentLiabilities: finite(p.CurrentLiabilities),
			TotalAssets:        finite(p.TotalAssets),
			TotalLiabilities:   finite(p.TotalLiabilities),
			TotalDebt:          finite(p.TotalDebt),
			Equity:             finite(p.Equity),
			FreeCashFlow:       finite(p.FreeCashFlow),
			Dividends:          finite(p.Dividends),
			SharesOutstanding:  nonNegative(p.SharesOutstanding),
		}

		n := len(periods)
		if n > 0 && periods[n-1].PeriodEnd.Equal(p.PeriodEnd) {
			periods[n-1] = normalized
			continue
		}
		periods = append(periods, normalized)
	}

	if lookback > 0 && len(periods) > lookback {
		periods = periods[len(periods)-lookback:]
	}
	return periods
}

func extractPrices(raw []contracts.PricePoint) []contracts.PricePoint {
	prices := make([]contracts.PricePoint, 0, len(raw))
	for _, p := range raw {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close < 0 {
			continue
		}
		prices = append(prices, p)
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	deduped := prices[:0]
	for _, p := range prices {
		n := len(deduped)
		if n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

func extractInsider(raw []contracts.InsiderTrade) []contracts.InsiderTrade {
	trades := make([]contracts.InsiderTrade, 0, len(raw))
	for _, t := range raw {
		if math.IsNaN(t.Shares) || math.IsInf(t.Shares, 0) {
			continue
		}
		trades = append(trades, t)
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Date.Before(trades[j].Date)
	})
	return trades
}

func extractNews(raw []contracts.NewsItem) []contracts.NewsItem {
	news := make([]contracts.NewsItem, 0, len(raw))
	for _, n := range raw {
		n.Sentiment = contracts.NewsSentiment(strings.ToLower(strings.TrimSpace(string(n.Sentiment))))
		news = append(news, n)
	}
	sort.SliceStable(news, func(i, j int) bool {
		return news[i].Date.Before(news[j].Date)
	})
	return news
}

// finite drops NaN and ±Inf
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}

// nonNegative drops non-finite and negative values (shares, market cap)
func nonNegative(v *float64) *float64 {
	f := finite(v)
	if f == nil || *f < 0 {
		return nil
	}
	return f
}
