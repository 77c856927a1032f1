package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/contracts"
)

func fullPeriod(end time.Time) contracts.Period {
	v := contracts.Float(1)
	return contracts.Period{
		PeriodEnd: end,
		EPS: v, Revenue: v, BookValuePerShare: v,
		CurrentAssets: v, CurrentLiabilities: v,
		TotalAssets: v, TotalLiabilities: v, TotalDebt: v, Equity: v,
		FreeCashFlow: v, Dividends: v, SharesOutstanding: v,
	}
}

func completeRecord() *contracts.MetricRecord {
	r := &contracts.MetricRecord{
		Code:      "AAPL",
		MarketCap: contracts.Float(1e12),
		Insider:   []contracts.InsiderTrade{{}},
		News:      []contracts.NewsItem{{}},
	}
	for i := 0; i < 5; i++ {
		r.Periods = append(r.Periods, fullPeriod(time.Date(2019+i, 12, 31, 0, 0, 0, 0, time.UTC)))
	}
	for i := 0; i < 60; i++ {
		r.Prices = append(r.Prices, contracts.PricePoint{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), Close: 100})
	}
	return r
}

func TestGate_Complete(t *testing.T) {
	report := NewGate(DefaultConfig()).Check(completeRecord(), 5)

	assert.True(t, report.Passed)
	assert.InDelta(t, 1.0, report.QualityScore, 1e-9)
	assert.Empty(t, report.Thin)
	assert.InDelta(t, 1.0, report.CoverageRate(), 1e-9)
}

func TestGate_Empty(t *testing.T) {
	report := NewGate(DefaultConfig()).Check(&contracts.MetricRecord{Code: "AAPL"}, 5)

	assert.False(t, report.Passed)
	assert.Zero(t, report.QualityScore)
	assert.Equal(t, []string{SectionFields, SectionMarketCap, SectionPeriods, SectionPrices}, report.Thin)
}

func TestGate_Partial(t *testing.T) {
	r := completeRecord()
	r.Periods = r.Periods[:2] // 2 of 5 requested
	r.Prices = r.Prices[:30]
	r.News = nil

	report := NewGate(DefaultConfig()).Check(r, 5)

	require.Contains(t, report.Coverage, SectionPeriods)
	assert.InDelta(t, 0.4, report.Coverage[SectionPeriods], 1e-9)
	assert.InDelta(t, 0.5, report.Coverage[SectionPrices], 1e-9)
	assert.Zero(t, report.Coverage[SectionNews])
	// 0.3*0.4 + 0.3 + 0.2*0.5 + 0.1 + 0.05
	assert.InDelta(t, 0.67, report.QualityScore, 1e-9)
	assert.True(t, report.Passed)
	assert.Equal(t, []string{SectionPeriods, SectionPrices}, report.Thin)
}

func TestFieldCoverage(t *testing.T) {
	half := contracts.Period{EPS: contracts.Float(1), Revenue: contracts.Float(2)}
	assert.InDelta(t, 2.0/12.0, fieldCoverage([]contracts.Period{half}), 1e-9)
	assert.Zero(t, fieldCoverage(nil))
}

func TestNilRecord(t *testing.T) {
	var report *contracts.DataQualityReport
	assert.Zero(t, report.CoverageRate())

	report = NewGate(DefaultConfig()).Check(nil, 5)
	assert.False(t, report.Passed)
}
