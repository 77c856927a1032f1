package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// NewsRepository reads labelled news headlines
// ⭐ SSOT: 뉴스 데이터 저장소는 여기서만
type NewsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

// GetByCodeAndDateRange retrieves news for a code within date range
func (r *NewsRepository) GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]contracts.NewsItem, error) {
	query := `
		SELECT published_at, title, COALESCE(sentiment, 'neutral')
		FROM data.news
		WHERE stock_code = $1 AND published_at BETWEEN $2 AND $3
		ORDER BY published_at ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []contracts.NewsItem
	for rows.Next() {
		var n contracts.NewsItem
		var sentiment string
		if err := rows.Scan(&n.Date, &n.Title, &sentiment); err != nil {
			return nil, err
		}
		n.Sentiment = contracts.NewsSentiment(sentiment)
		items = append(items, n)
	}
	return items, rows.Err()
}

// Save saves a single news item
func (r *NewsRepository) Save(ctx context.Context, code string, item contracts.NewsItem) error {
	query := `
		INSERT INTO data.news (stock_code, published_at, title, sentiment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stock_code, published_at, title) DO UPDATE SET
			sentiment = EXCLUDED.sentiment
	`

	_, err := r.pool.Exec(ctx, query, code, item.Date, item.Title, string(item.Sentiment))
	return err
}
