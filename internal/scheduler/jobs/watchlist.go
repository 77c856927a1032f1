package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/scheduler"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// Evaluator is the part of brain.Evaluator the watchlist needs
type Evaluator interface {
	Evaluate(ctx context.Context, code string, asOf time.Time, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error)
}

// WatchlistJob evaluates every watchlist code on a schedule
// Persistence happens inside the evaluator when it has a store.
type WatchlistJob struct {
	evaluator   Evaluator
	codes       []string
	schedule    string
	lookback    int
	concurrency int
	progress    contracts.ProgressFunc
	logger      *logger.Logger
	now         func() time.Time
}

// WatchlistSummary is the outcome of one watchlist run
type WatchlistSummary struct {
	Evaluated int
	Failed    map[string]error
	Signals   map[string]contracts.Signal
}

// NewWatchlistJob creates a new watchlist job
func NewWatchlistJob(evaluator Evaluator, codes []string, schedule string, lookback int, log *logger.Logger) *WatchlistJob {
	if log == nil {
		log = logger.Nop()
	}
	return &WatchlistJob{
		evaluator:   evaluator,
		codes:       codes,
		schedule:    schedule,
		lookback:    lookback,
		concurrency: 4,
		logger:      log,
		now:         time.Now,
	}
}

// WithProgress forwards evaluation progress (e.g. to the websocket hub)
func (j *WatchlistJob) WithProgress(progress contracts.ProgressFunc) *WatchlistJob {
	j.progress = progress
	return j
}

// Name returns the job name
func (j *WatchlistJob) Name() string {
	return "watchlist_evaluation"
}

// Schedule returns the cron schedule
func (j *WatchlistJob) Schedule() string {
	return j.schedule
}

// RetryPolicy retries a failed run once; evaluations are idempotent
// so a retry only repeats the codes' evaluations.
func (j *WatchlistJob) RetryPolicy() scheduler.RetryPolicy {
	return scheduler.RetryPolicy{
		MaxRetries: 1,
		Delay:      5 * time.Minute,
		Timeout:    20 * time.Minute,
	}
}

// Run evaluates the watchlist
// Individual failures are logged; the run fails only when no code could be evaluated.
func (j *WatchlistJob) Run(ctx context.Context) error {
	summary, err := j.Evaluate(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"evaluated": summary.Evaluated,
		"failed":    len(summary.Failed),
	}).Info("Watchlist evaluation completed")

	if summary.Evaluated == 0 && len(summary.Failed) > 0 {
		return fmt.Errorf("all %d watchlist codes failed", len(summary.Failed))
	}
	return nil
}

// Evaluate runs the panel for every code with bounded concurrency
func (j *WatchlistJob) Evaluate(ctx context.Context) (*WatchlistSummary, error) {
	summary := &WatchlistSummary{
		Failed:  make(map[string]error),
		Signals: make(map[string]contracts.Signal),
	}
	if len(j.codes) == 0 {
		j.logger.Debug("Watchlist is empty, nothing to evaluate")
		return summary, nil
	}

	asOf := j.now()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, code := range j.codes {
		g.Go(func() error {
			eval, err := j.evaluator.Evaluate(gctx, code, asOf, j.lookback, j.progress)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// cancellation stops the whole run
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				summary.Failed[code] = err
				j.logger.WithError(err).WithField("code", code).Warn("Watchlist evaluation failed")
				return nil
			}

			summary.Evaluated++
			summary.Signals[eval.Code] = eval.Summary.Signal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("watchlist run interrupted: %w", err)
	}
	return summary, nil
}
