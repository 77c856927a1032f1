package repos

import (
	"context"
	"time"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/pkg/redis"
)

// CachedStore decorates a ResultStore with a cached latest lookup
// Save writes through and refreshes the cached entry.
type CachedStore struct {
	store contracts.ResultStore
	cache *redis.Cache
	ttl   time.Duration
}

// NewCachedStore creates a cached store
func NewCachedStore(store contracts.ResultStore, cache *redis.Cache, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedStore{store: store, cache: cache, ttl: ttl}
}

// Save persists the evaluation, then caches it as the latest
func (s *CachedStore) Save(ctx context.Context, eval *contracts.Evaluation) error {
	if err := s.store.Save(ctx, eval); err != nil {
		return err
	}
	// a stale entry would hide this run, so drop it when the write fails
	if err := s.cache.Set(ctx, redis.LatestEvaluationKey(eval.Code), eval, s.ttl); err != nil {
		_ = s.cache.Delete(ctx, redis.LatestEvaluationKey(eval.Code))
	}
	return nil
}

// GetLatest reads through the cache
func (s *CachedStore) GetLatest(ctx context.Context, code string) (*contracts.Evaluation, error) {
	var eval contracts.Evaluation
	err := s.cache.GetOrSet(ctx, redis.LatestEvaluationKey(code), &eval, s.ttl, func() (interface{}, error) {
		return s.store.GetLatest(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// ListByCode passes through when the wrapped store keeps history
func (s *CachedStore) ListByCode(ctx context.Context, code string, limit int) ([]EvaluationSummary, error) {
	history, ok := s.store.(interface {
		ListByCode(ctx context.Context, code string, limit int) ([]EvaluationSummary, error)
	})
	if !ok {
		return nil, nil
	}
	return history.ListByCode(ctx, code, limit)
}
