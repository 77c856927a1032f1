package quality

import (
	"sort"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Coverage sections
const (
	SectionPeriods   = "periods"
	SectionFields    = "fields"
	SectionPrices    = "prices"
	SectionMarketCap = "market_cap"
	SectionInsider   = "insider"
	SectionNews      = "news"
)

// Gate grades the completeness of an extracted record
// It never blocks an evaluation; a failing grade is reported alongside it.
type Gate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinPeriodCoverage float64 // 조회 기간 대비 보고 기간 비율
	MinFieldCoverage  float64 // 재무 항목 채움 비율
	MinPriceDays      int     // 가격 기반 팩터에 필요한 종가 수
	MinQualityScore   float64
}

// DefaultConfig returns the built-in thresholds
func DefaultConfig() Config {
	return Config{
		MinPeriodCoverage: 0.6,
		MinFieldCoverage:  0.7,
		MinPriceDays:      60,
		MinQualityScore:   0.6,
	}
}

// section weights; insider and news only feed the sentiment style
var weights = map[string]float64{
	SectionPeriods:   0.30,
	SectionFields:    0.30,
	SectionPrices:    0.20,
	SectionMarketCap: 0.10,
	SectionInsider:   0.05,
	SectionNews:      0.05,
}

// NewGate creates a new Gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Check grades record against lookback requested periods
// ⭐ SSOT: 종목 단위 데이터 품질 검증
func (g *Gate) Check(record *contracts.MetricRecord, lookback int) *contracts.DataQualityReport {
	report := &contracts.DataQualityReport{Coverage: make(map[string]float64, len(weights))}
	if record == nil {
		return report
	}

	report.Coverage[SectionPeriods] = ratio(len(record.Periods), lookback)
	report.Coverage[SectionFields] = fieldCoverage(record.Periods)
	report.Coverage[SectionPrices] = ratio(len(record.Prices), g.config.MinPriceDays)
	report.Coverage[SectionMarketCap] = presence(record.MarketCap != nil)
	report.Coverage[SectionInsider] = presence(len(record.Insider) > 0)
	report.Coverage[SectionNews] = presence(len(record.News) > 0)

	for section, weight := range weights {
		report.QualityScore += weight * report.Coverage[section]
	}

	if report.Coverage[SectionPeriods] < g.config.MinPeriodCoverage {
		report.Thin = append(report.Thin, SectionPeriods)
	}
	if report.Coverage[SectionFields] < g.config.MinFieldCoverage {
		report.Thin = append(report.Thin, SectionFields)
	}
	if report.Coverage[SectionPrices] < 1 {
		report.Thin = append(report.Thin, SectionPrices)
	}
	if record.MarketCap == nil {
		report.Thin = append(report.Thin, SectionMarketCap)
	}
	sort.Strings(report.Thin)

	report.Passed = report.QualityScore >= g.config.MinQualityScore
	return report
}

// ratio is have/want capped at 1; want <= 0 counts as fully covered
func ratio(have, want int) float64 {
	if want <= 0 {
		return 1
	}
	if have >= want {
		return 1
	}
	return float64(have) / float64(want)
}

func presence(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// fieldCoverage is the share of non-nil financial fields across all periods
func fieldCoverage(periods []contracts.Period) float64 {
	if len(periods) == 0 {
		return 0
	}

	filled, total := 0, 0
	for _, p := range periods {
		for _, v := range []*float64{
			p.EPS, p.Revenue, p.BookValuePerShare,
			p.CurrentAssets, p.CurrentLiabilities,
			p.TotalAssets, p.TotalLiabilities, p.TotalDebt, p.Equity,
			p.FreeCashFlow, p.Dividends, p.SharesOutstanding,
		} {
			total++
			if v != nil {
				filled++
			}
		}
	}
	return float64(filled) / float64(total)
}
