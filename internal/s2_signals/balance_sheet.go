package s2_signals

import (
	"github.com/wonny/aegis-panel/internal/contracts"
)

// BalanceSheet scores liquidity, leverage and dividend record (max 5)
func BalanceSheet(r *contracts.MetricRecord) contracts.FactorScore {
	var c scorecard

	// 유동비율 = 유동자산 / 유동부채
	if assets, liabilities, ok := latestPair(r, contracts.FieldCurrentAssets, contracts.FieldCurrentLiabilities); !ok {
		c.skip("current ratio unavailable: missing current assets or liabilities")
	} else if liabilities <= 0 {
		c.skip("current ratio unavailable: current liabilities %.2f", liabilities)
	} else if cr, ok := ratio(assets, liabilities); !ok {
		c.skip("current ratio unavailable")
	} else {
		switch {
		case cr >= 2.0:
			c.add(2, 2, "strong liquidity: current ratio %.2f", cr)
		case cr >= 1.5:
			c.add(1, 2, "moderate liquidity: current ratio %.2f", cr)
		default:
			c.add(0, 2, "weak liquidity: current ratio %.2f", cr)
		}
	}

	// 부채비율 = 총부채 / 총자산 (총부채 없으면 차입금으로 대체)
	if debt, assets, ok := debtAndAssets(r); !ok {
		c.skip("debt ratio unavailable: missing liabilities or total assets")
	} else if assets <= 0 {
		c.skip("debt ratio unavailable: total assets %.2f", assets)
	} else if dr, ok := ratio(debt, assets); !ok {
		c.skip("debt ratio unavailable")
	} else {
		switch {
		case dr <= 0.5:
			c.add(2, 2, "conservative debt ratio %.2f", dr)
		case dr <= 0.8:
			c.add(1, 2, "moderate debt ratio %.2f", dr)
		default:
			c.add(0, 2, "high debt ratio %.2f", dr)
		}
	}

	dividends := r.Series(contracts.FieldDividends)
	if len(dividends) == 0 {
		c.skip("no dividend data")
	} else {
		paid := 0
		for _, d := range dividends {
			if d > 0 {
				paid++
			}
		}
		if paid*2 > len(dividends) {
			c.add(1, 1, "dividends paid in %d of %d periods", paid, len(dividends))
		} else {
			c.add(0, 1, "dividends paid in only %d of %d periods", paid, len(dividends))
		}
	}

	return c.result()
}

// debtAndAssets prefers total liabilities and falls back to total debt
func debtAndAssets(r *contracts.MetricRecord) (float64, float64, bool) {
	for i := len(r.Periods) - 1; i >= 0; i-- {
		p := r.Periods[i]
		if p.TotalAssets == nil {
			continue
		}
		if p.TotalLiabilities != nil {
			return *p.TotalLiabilities, *p.TotalAssets, true
		}
		if p.TotalDebt != nil {
			return *p.TotalDebt, *p.TotalAssets, true
		}
	}
	return 0, 0, false
}
