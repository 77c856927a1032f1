package s0_data

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// PriceRepository reads daily closes and market capitalization
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetByCodeAndDateRange retrieves closes for a code within date range
func (r *PriceRepository) GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]contracts.PricePoint, error) {
	query := `
		SELECT trade_date, close_price
		FROM data.daily_prices
		WHERE stock_code = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetMarketCap retrieves the latest market cap on or before asOf
// No row is not an error: the value is simply missing.
func (r *PriceRepository) GetMarketCap(ctx context.Context, code string, asOf time.Time) (*float64, error) {
	query := `
		SELECT market_cap
		FROM data.market_cap
		WHERE stock_code = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var marketCap *float64
	err := r.pool.QueryRow(ctx, query, code, asOf).Scan(&marketCap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return marketCap, nil
}

// Save saves a single close
func (r *PriceRepository) Save(ctx context.Context, code string, price contracts.PricePoint) error {
	query := `
		INSERT INTO data.daily_prices (stock_code, trade_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	_, err := r.pool.Exec(ctx, query, code, price.Date, price.Close)
	return err
}

// SaveBatch saves multiple closes
func (r *PriceRepository) SaveBatch(ctx context.Context, code string, prices []contracts.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}

	for _, price := range prices {
		if err := r.Save(ctx, code, price); err != nil {
			return err
		}
	}
	return nil
}

// SaveMarketCap saves the market cap for a date
func (r *PriceRepository) SaveMarketCap(ctx context.Context, code string, date time.Time, marketCap float64) error {
	query := `
		INSERT INTO data.market_cap (stock_code, trade_date, market_cap)
		VALUES ($1, $2, $3)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			market_cap = EXCLUDED.market_cap
	`

	_, err := r.pool.Exec(ctx, query, code, date, marketCap)
	return err
}
