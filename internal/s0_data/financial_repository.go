package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// FinancialRepository reads reported financial periods
// ⭐ SSOT: 재무 데이터 저장소는 여기서만
type FinancialRepository struct {
	pool *pgxpool.Pool
}

// NewFinancialRepository creates a new financial repository
func NewFinancialRepository(pool *pgxpool.Pool) *FinancialRepository {
	return &FinancialRepository{pool: pool}
}

// GetRecentByCode retrieves the most recent periods filed on or before asOf
// NULL columns stay nil; no COALESCE so missing never turns into zero.
func (r *FinancialRepository) GetRecentByCode(ctx context.Context, code string, asOf time.Time, periods int) ([]contracts.RawPeriod, error) {
	if periods <= 0 {
		periods = 10
	}

	query := `
		SELECT report_date, filed_at,
		       eps, revenue, book_value_per_share,
		       current_assets, current_liabilities,
		       total_assets, total_liabilities, total_debt, shareholders_equity,
		       free_cash_flow, dividends, shares_outstanding
		FROM data.fundamentals
		WHERE stock_code = $1 AND filed_at <= $2
		ORDER BY report_date DESC, filed_at DESC
		LIMIT $3
	`

	// Restatements share a report_date, so fetch extra rows and let Extract dedupe
	rows, err := r.pool.Query(ctx, query, code, asOf, periods*2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []contracts.RawPeriod
	for rows.Next() {
		var p contracts.RawPeriod
		if err := rows.Scan(
			&p.PeriodEnd, &p.FiledAt,
			&p.EPS, &p.Revenue, &p.BookValuePerShare,
			&p.CurrentAssets, &p.CurrentLiabilities,
			&p.TotalAssets, &p.TotalLiabilities, &p.TotalDebt, &p.Equity,
			&p.FreeCashFlow, &p.Dividends, &p.SharesOutstanding,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Save upserts a reported period
func (r *FinancialRepository) Save(ctx context.Context, code string, p contracts.RawPeriod) error {
	query := `
		INSERT INTO data.fundamentals (
			stock_code, report_date, filed_at,
			eps, revenue, book_value_per_share,
			current_assets, current_liabilities,
			total_assets, total_liabilities, total_debt, shareholders_equity,
			free_cash_flow, dividends, shares_outstanding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (stock_code, report_date, filed_at) DO UPDATE SET
			eps = EXCLUDED.eps,
			revenue = EXCLUDED.revenue,
			book_value_per_share = EXCLUDED.book_value_per_share,
			current_assets = EXCLUDED.current_assets,
			current_liabilities = EXCLUDED.current_liabilities,
			total_assets = EXCLUDED.total_assets,
			total_liabilities = EXCLUDED.total_liabilities,
			total_debt = EXCLUDED.total_debt,
			shareholders_equity = EXCLUDED.shareholders_equity,
			free_cash_flow = EXCLUDED.free_cash_flow,
			dividends = EXCLUDED.dividends,
			shares_outstanding = EXCLUDED.shares_outstanding
	`

	_, err := r.pool.Exec(ctx, query,
		code, p.PeriodEnd, p.FiledAt,
		p.EPS, p.Revenue, p.BookValuePerShare,
		p.CurrentAssets, p.CurrentLiabilities,
		p.TotalAssets, p.TotalLiabilities, p.TotalDebt, p.Equity,
		p.FreeCashFlow, p.Dividends, p.SharesOutstanding,
	)
	return err
}
