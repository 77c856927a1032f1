package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// Repository implements contracts.MetricsSource on PostgreSQL
// ⭐ SSOT: 원천 데이터 조회는 여기서만
type Repository struct {
	db         *pgxpool.Pool
	financials *FinancialRepository
	prices     *PriceRepository
	insider    *InsiderRepository
	news       *NewsRepository
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:         db,
		financials: NewFinancialRepository(db),
		prices:     NewPriceRepository(db),
		insider:    NewInsiderRepository(db),
		news:       NewNewsRepository(db),
	}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

// Lookup checks that the instrument exists and is active
func (r *Repository) Lookup(ctx context.Context, code string) error {
	query := `
		SELECT code
		FROM data.instruments
		WHERE code = $1 AND is_active = TRUE
	`

	var found string
	err := r.db.QueryRow(ctx, query, code).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.ErrUnknownInstrument
	}
	if err != nil {
		return fmt.Errorf("lookup instrument: %w", err)
	}
	return nil
}

// Financials returns up to periods reported periods filed on or before asOf
func (r *Repository) Financials(ctx context.Context, code string, asOf time.Time, periods int) ([]contracts.RawPeriod, error) {
	return r.financials.GetRecentByCode(ctx, code, asOf, periods)
}

// Prices returns daily closes within [from, to]
func (r *Repository) Prices(ctx context.Context, code string, from, to time.Time) ([]contracts.PricePoint, error) {
	return r.prices.GetByCodeAndDateRange(ctx, code, from, to)
}

// MarketCap returns the latest market capitalization on or before asOf
func (r *Repository) MarketCap(ctx context.Context, code string, asOf time.Time) (*float64, error) {
	return r.prices.GetMarketCap(ctx, code, asOf)
}

// InsiderTrades returns insider transactions within [from, to]
func (r *Repository) InsiderTrades(ctx context.Context, code string, from, to time.Time) ([]contracts.InsiderTrade, error) {
	return r.insider.GetByCodeAndDateRange(ctx, code, from, to)
}

// News returns labelled news items within [from, to]
func (r *Repository) News(ctx context.Context, code string, from, to time.Time) ([]contracts.NewsItem, error) {
	return r.news.GetByCodeAndDateRange(ctx, code, from, to)
}

// Import stores a raw record, registering the instrument if needed
// Used by the import command to seed the metrics tables.
func (r *Repository) Import(ctx context.Context, raw *contracts.RawRecord) error {
	if err := ValidateCode(raw.Code); err != nil {
		return err
	}
	code := NormalizeCode(raw.Code)

	query := `
		INSERT INTO data.instruments (code, is_active)
		VALUES ($1, TRUE)
		ON CONFLICT (code) DO UPDATE SET is_active = TRUE
	`
	if _, err := r.db.Exec(ctx, query, code); err != nil {
		return fmt.Errorf("upsert instrument: %w", err)
	}

	for _, p := range raw.Periods {
		if err := r.financials.Save(ctx, code, p); err != nil {
			return fmt.Errorf("save period %s: %w", p.PeriodEnd.Format("2006-01-02"), err)
		}
	}

	if err := r.prices.SaveBatch(ctx, code, raw.Prices); err != nil {
		return fmt.Errorf("save prices: %w", err)
	}

	if raw.MarketCap != nil {
		if err := r.prices.SaveMarketCap(ctx, code, raw.AsOf, *raw.MarketCap); err != nil {
			return fmt.Errorf("save market cap: %w", err)
		}
	}

	for _, t := range raw.Insider {
		if err := r.insider.Save(ctx, code, t); err != nil {
			return fmt.Errorf("save insider trade: %w", err)
		}
	}

	for _, n := range raw.News {
		if err := r.news.Save(ctx, code, n); err != nil {
			return fmt.Errorf("save news: %w", err)
		}
	}

	return nil
}
