package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first; an undecodable entry is treated as a miss
	if found, err := c.Get(ctx, key, dest); err == nil && found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	// A failed write only costs a future miss
	_ = c.Set(ctx, key, value, ttl)

	// Round-trip through JSON so cached and fresh values look identical
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // 시세
	TTLMedium = 10 * time.Minute // 재무/뉴스
	TTLLong   = 1 * time.Hour    // 마스터 데이터
	TTLDaily  = 24 * time.Hour   // 일별 데이터
)

// Common cache key generators
func FinancialKey(code string, asOf time.Time, periods int) string {
	return fmt.Sprintf("financial:%s:%s:%d", code, asOf.Format("2006-01-02"), periods)
}

func PriceKey(code string, from, to time.Time) string {
	return fmt.Sprintf("price:%s:%s:%s", code, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func MarketCapKey(code string, asOf time.Time) string {
	return fmt.Sprintf("marketcap:%s:%s", code, asOf.Format("2006-01-02"))
}

func InsiderKey(code string, from, to time.Time) string {
	return fmt.Sprintf("insider:%s:%s:%s", code, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func NewsKey(code string, from, to time.Time) string {
	return fmt.Sprintf("news:%s:%s:%s", code, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func LatestEvaluationKey(code string) string {
	return fmt.Sprintf("evaluation:latest:%s", code)
}
