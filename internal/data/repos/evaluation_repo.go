package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// EvaluationRepository implements contracts.ResultStore
// ⭐ SSOT: 평가 결과 저장/조회는 여기서만
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

// EvaluationSummary is one row of an instrument's evaluation history
type EvaluationSummary struct {
	RunID      string             `json:"run_id"`
	Code       string             `json:"code"`
	AsOf       time.Time          `json:"as_of"`
	Signal     contracts.Signal   `json:"signal"`
	Strength   contracts.Strength `json:"strength"`
	Confidence int                `json:"confidence"`
	PolicyHash string             `json:"policy_hash"`
	CreatedAt  time.Time          `json:"created_at"`
}

// styleRow is the flattened form of one style bundle
type styleRow struct {
	Style      contracts.Style
	Signal     contracts.Signal
	Confidence int
	RawScore   float64
	MaxScore   float64
	Breakdown  []byte
	Reasoning  string
}

func styleRows(eval *contracts.Evaluation) ([]styleRow, error) {
	rows := make([]styleRow, 0, len(eval.Styles))
	for _, b := range eval.Styles {
		breakdown, err := json.Marshal(b.Breakdown)
		if err != nil {
			return nil, fmt.Errorf("marshal breakdown for %s: %w", b.Style, err)
		}
		rows = append(rows, styleRow{
			Style:      b.Style,
			Signal:     b.Signal,
			Confidence: b.Confidence,
			RawScore:   b.RawScore,
			MaxScore:   b.MaxScore,
			Breakdown:  breakdown,
			Reasoning:  eval.PerStyle[b.Style].Reasoning,
		})
	}
	return rows, nil
}

// Save stores the evaluation and its style bundles in one transaction
func (r *EvaluationRepository) Save(ctx context.Context, eval *contracts.Evaluation) error {
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	rows, err := styleRows(eval)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO analysis.evaluations (
			run_id, stock_code, as_of, lookback, policy_hash,
			signal, strength, confidence,
			bullish_pct, bearish_pct, neutral_pct,
			reasoning, missing, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (run_id) DO UPDATE SET
			signal = EXCLUDED.signal,
			strength = EXCLUDED.strength,
			confidence = EXCLUDED.confidence,
			payload = EXCLUDED.payload
	`

	c := eval.Consensus
	_, err = tx.Exec(ctx, query,
		eval.RunID, eval.Code, eval.AsOf, eval.Lookback, eval.PolicyHash,
		c.Signal, c.Strength, eval.Summary.Confidence,
		c.Percentages.Bullish, c.Percentages.Bearish, c.Percentages.Neutral,
		eval.Summary.Reasoning, eval.Missing, payload, eval.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	if err := r.saveStyleBundles(ctx, tx, eval.RunID, rows); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *EvaluationRepository) saveStyleBundles(ctx context.Context, tx pgx.Tx, runID string, rows []styleRow) error {
	query := `
		INSERT INTO analysis.style_bundles (
			run_id, style, signal, confidence, raw_score, max_score, breakdown, reasoning
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, style) DO UPDATE SET
			signal = EXCLUDED.signal,
			confidence = EXCLUDED.confidence,
			raw_score = EXCLUDED.raw_score,
			max_score = EXCLUDED.max_score,
			breakdown = EXCLUDED.breakdown,
			reasoning = EXCLUDED.reasoning
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, runID, row.Style, row.Signal, row.Confidence, row.RawScore, row.MaxScore, row.Breakdown, row.Reasoning)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, row := range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save style bundle %s: %w", row.Style, err)
		}
	}
	return nil
}

// GetLatest returns the most recent evaluation for a code
// contracts.ErrNotFound when none was saved.
func (r *EvaluationRepository) GetLatest(ctx context.Context, code string) (*contracts.Evaluation, error) {
	query := `
		SELECT payload
		FROM analysis.evaluations
		WHERE stock_code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, code).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest evaluation: %w", err)
	}

	var eval contracts.Evaluation
	if err := json.Unmarshal(payload, &eval); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	return &eval, nil
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// historyLimit defaults a missing limit and caps large ones
func historyLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}

// ListByCode returns the evaluation history for a code, newest first
func (r *EvaluationRepository) ListByCode(ctx context.Context, code string, limit int) ([]EvaluationSummary, error) {
	limit = historyLimit(limit)

	query := `
		SELECT run_id::text, stock_code, as_of, signal, strength, confidence,
		       COALESCE(policy_hash, ''), created_at
		FROM analysis.evaluations
		WHERE stock_code = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, code, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var out []EvaluationSummary
	for rows.Next() {
		var s EvaluationSummary
		if err := rows.Scan(&s.RunID, &s.Code, &s.AsOf, &s.Signal, &s.Strength, &s.Confidence, &s.PolicyHash, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// DeleteBefore removes evaluations created before cutoff; style bundles cascade
func (r *EvaluationRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analysis.evaluations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old evaluations: %w", err)
	}
	return tag.RowsAffected(), nil
}
