package contracts

import "time"

// RawRecord is the instrument snapshot as delivered by a MetricsSource
// Values may be missing (nil), unordered, duplicated or non-finite.
type RawRecord struct {
	Code      string         `json:"code"`
	AsOf      time.Time      `json:"as_of"`
	MarketCap *float64       `json:"market_cap,omitempty"`
	Periods   []RawPeriod    `json:"periods"`
	Prices    []PricePoint   `json:"prices"`
	Insider   []InsiderTrade `json:"insider_trades"`
	News      []NewsItem     `json:"news"`
}

// RawPeriod is one reported financial period
type RawPeriod struct {
	PeriodEnd time.Time `json:"period_end"`
	FiledAt   time.Time `json:"filed_at"`

	EPS                *float64 `json:"eps,omitempty"`
	Revenue            *float64 `json:"revenue,omitempty"`
	BookValuePerShare  *float64 `json:"book_value_per_share,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	TotalAssets        *float64 `json:"total_assets,omitempty"`
	TotalLiabilities   *float64 `json:"total_liabilities,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	Equity             *float64 `json:"shareholders_equity,omitempty"`
	FreeCashFlow       *float64 `json:"free_cash_flow,omitempty"`
	Dividends          *float64 `json:"dividends,omitempty"` // 배당 지급액 (양수 = 지급)
	SharesOutstanding  *float64 `json:"shares_outstanding,omitempty"`
}

// PricePoint is a daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// InsiderTrade is a single insider transaction
// Shares > 0 is a buy, Shares < 0 is a sell
type InsiderTrade struct {
	Date   time.Time `json:"date"`
	Shares float64   `json:"shares"`
}

// NewsSentiment labels a news item
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is a headline with a sentiment label
type NewsItem struct {
	Date      time.Time     `json:"date"`
	Title     string        `json:"title"`
	Sentiment NewsSentiment `json:"sentiment"`
}

// MetricRecord is the normalized snapshot consumed by factor scorers
// ⭐ SSOT: 스코어러 입력은 이 타입만 사용
//
// Periods, Prices, Insider and News are ordered oldest → newest.
// A nil pointer is a missing value and is never read as zero.
type MetricRecord struct {
	Code      string
	AsOf      time.Time
	MarketCap *float64
	Periods   []Period
	Prices    []PricePoint
	Insider   []InsiderTrade
	News      []NewsItem
}

// Period is one normalized financial period
type Period struct {
	PeriodEnd time.Time

	EPS                *float64
	Revenue            *float64
	BookValuePerShare  *float64
	CurrentAssets      *float64
	CurrentLiabilities *float64
	TotalAssets        *float64
	TotalLiabilities   *float64
	TotalDebt          *float64
	Equity             *float64
	FreeCashFlow       *float64
	Dividends          *float64
	SharesOutstanding  *float64
}

// Field selects one optional value of a Period
type Field func(p Period) *float64

// Period field selectors
var (
	FieldEPS                Field = func(p Period) *float64 { return p.EPS }
	FieldRevenue            Field = func(p Period) *float64 { return p.Revenue }
	FieldBookValuePerShare  Field = func(p Period) *float64 { return p.BookValuePerShare }
	FieldCurrentAssets      Field = func(p Period) *float64 { return p.CurrentAssets }
	FieldCurrentLiabilities Field = func(p Period) *float64 { return p.CurrentLiabilities }
	FieldTotalAssets        Field = func(p Period) *float64 { return p.TotalAssets }
	FieldTotalLiabilities   Field = func(p Period) *float64 { return p.TotalLiabilities }
	FieldTotalDebt          Field = func(p Period) *float64 { return p.TotalDebt }
	FieldEquity             Field = func(p Period) *float64 { return p.Equity }
	FieldFreeCashFlow       Field = func(p Period) *float64 { return p.FreeCashFlow }
	FieldDividends          Field = func(p Period) *float64 { return p.Dividends }
	FieldSharesOutstanding  Field = func(p Period) *float64 { return p.SharesOutstanding }
)

// Series returns the present values of a field, oldest → newest
func (r *MetricRecord) Series(f Field) []float64 {
	if r == nil {
		return nil
	}
	out := make([]float64, 0, len(r.Periods))
	for _, p := range r.Periods {
		if v := f(p); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Latest returns the most recent present value of a field
func (r *MetricRecord) Latest(f Field) (float64, bool) {
	if r == nil {
		return 0, false
	}
	for i := len(r.Periods) - 1; i >= 0; i-- {
		if v := f(r.Periods[i]); v != nil {
			return *v, true
		}
	}
	return 0, false
}

// Closes returns the closing prices, oldest → newest
func (r *MetricRecord) Closes() []float64 {
	if r == nil {
		return nil
	}
	out := make([]float64, len(r.Prices))
	for i, p := range r.Prices {
		out[i] = p.Close
	}
	return out
}

// Float returns a pointer to v, for building records in code and tests
func Float(v float64) *float64 {
	return &v
}
