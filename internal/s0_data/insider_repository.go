package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// InsiderRepository reads insider transactions
// ⭐ SSOT: 내부자 거래 저장소는 여기서만
type InsiderRepository struct {
	pool *pgxpool.Pool
}

// NewInsiderRepository creates a new insider repository
func NewInsiderRepository(pool *pgxpool.Pool) *InsiderRepository {
	return &InsiderRepository{pool: pool}
}

// GetByCodeAndDateRange retrieves insider trades for a code within date range
// shares is signed: buys positive, sells negative
func (r *InsiderRepository) GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]contracts.InsiderTrade, error) {
	query := `
		SELECT trade_date, shares
		FROM data.insider_trades
		WHERE stock_code = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []contracts.InsiderTrade
	for rows.Next() {
		var t contracts.InsiderTrade
		if err := rows.Scan(&t.Date, &t.Shares); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Save saves a single insider trade
func (r *InsiderRepository) Save(ctx context.Context, code string, trade contracts.InsiderTrade) error {
	query := `
		INSERT INTO data.insider_trades (stock_code, trade_date, shares)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, code, trade.Date, trade.Shares)
	return err
}
