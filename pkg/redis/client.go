package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/aegis-panel/pkg/config"
)

const defaultKeyPrefix = "panel"

// Client wraps go-redis; a disabled client turns every cache call into a miss
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
	prefix  string
}

// New connects to redis and pings it within the dial timeout
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	rc := cfg.Redis
	if !rc.Enabled {
		return Disabled(rc.KeyPrefix), nil
	}

	dialTimeout := rc.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(rc.Host, rc.Port),
		Password:    rc.Password,
		DB:          rc.DB,
		PoolSize:    rc.PoolSize,
		DialTimeout: dialTimeout,
		// 캐시 조회가 평가를 붙잡지 않도록 짧게
		ReadTimeout:  dialTimeout,
		WriteTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true, prefix: keyPrefix(rc.KeyPrefix)}, nil
}

// Disabled returns a client that caches nothing
func Disabled(prefix string) *Client {
	return &Client{prefix: keyPrefix(prefix)}
}

func keyPrefix(p string) string {
	if p == "" {
		return defaultKeyPrefix
	}
	return p
}

// NewCache creates a cache namespaced by the configured key prefix
func (c *Client) NewCache() *Cache {
	return NewCache(c, c.prefix)
}

// Prefix returns the key namespace
func (c *Client) Prefix() string {
	return c.prefix
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying redis client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
