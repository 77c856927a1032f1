package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wonny/aegis-panel/internal/brain"
	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/data/repos"
	"github.com/wonny/aegis-panel/internal/narrative"
	"github.com/wonny/aegis-panel/internal/s0_data"
	"github.com/wonny/aegis-panel/internal/strategyconfig"
	"github.com/wonny/aegis-panel/pkg/config"
	"github.com/wonny/aegis-panel/pkg/database"
	"github.com/wonny/aegis-panel/pkg/logger"
	"github.com/wonny/aegis-panel/pkg/metrics"
	"github.com/wonny/aegis-panel/pkg/redis"
)

// app holds the wired services shared by the server-side commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client
	data      *s0_data.Repository
	results   *repos.EvaluationRepository
	store     contracts.ResultStore
	metrics   *metrics.Recorder
	evaluator *brain.Evaluator
}

// newApp loads config and connects DB + redis, then builds the evaluator
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("Connected to database")

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		// 캐시 없이도 동작
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled(cfg.Redis.KeyPrefix)
	}
	cache := rdb.NewCache()

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		redis:   rdb,
		data:    s0_data.NewRepository(db.Pool),
		results: repos.NewEvaluationRepository(db.Pool),
		metrics: metrics.New(),
	}
	a.store = repos.NewCachedStore(a.results, cache, redis.TTLLong)

	policy, err := loadPolicy(cfg.Panel.PolicyPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []brain.Option{
		brain.WithStore(a.store),
		brain.WithMetrics(a.metrics),
		brain.WithFetchTimeout(cfg.Panel.FetchTimeout),
	}
	if cfg.Panel.NarratorURL != "" {
		narrator, err := narrative.NewHTTPNarrator(narrative.Config{
			URL:     cfg.Panel.NarratorURL,
			Timeout: cfg.Panel.NarratorTimeout,
			RPS:     cfg.Panel.NarratorRPS,
		}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create narrator: %w", err)
		}
		opts = append(opts, brain.WithNarrator(narrator))
		log.WithField("url", cfg.Panel.NarratorURL).Info("Remote narrator enabled")
	}

	source := s0_data.NewCachedSource(a.data, cache, cfg.Panel.CacheTTL)
	a.evaluator, err = brain.NewEvaluator(source, policy, log, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create evaluator: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"policy_id":   policy.Meta.PolicyID,
		"policy_hash": a.evaluator.PolicyHash(),
	}).Info("Evaluator ready")

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// loadPolicy prefers --policy, then the configured path, then the built-in policy
func loadPolicy(configured string) (*strategyconfig.Config, error) {
	path := configured
	if policyFile != "" {
		path = policyFile
	}
	policy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return policy, nil
}

// cliLogger is used by commands that never touch the database
func cliLogger() *logger.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(&config.Config{
		Env:       "development",
		LogLevel:  level,
		LogFormat: "console",
	}, os.Stderr)
}

// parseAsOf parses YYYY-MM-DD; empty means today
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
