package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analyst panel
	Panel PanelConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	Enabled     bool
	KeyPrefix   string        // 캐시 키 네임스페이스
	DialTimeout time.Duration // 연결/ping 및 명령 타임아웃
	PoolSize    int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PanelConfig holds analyst panel configuration
type PanelConfig struct {
	PolicyPath      string        // 정책 YAML 경로 (비어있으면 기본 정책)
	DefaultLookback int           // 기본 조회 기간 수
	FetchTimeout    time.Duration // 섹션별 조회 타임아웃
	CacheTTL        time.Duration

	// Watchlist job
	Watchlist         []string
	WatchlistSchedule string // cron (초 포함)

	// Evaluation retention
	RetentionDays int
	PruneSchedule string

	// API rate limit (per client)
	RateLimitRPS   float64
	RateLimitBurst int

	// Remote narrator (비어있으면 규칙 기반 reasoning만 사용)
	NarratorURL     string
	NarratorTimeout time.Duration
	NarratorRPS     float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "aegis_panel"),
			User:            getEnv("DB_USER", "aegis_panel"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			Enabled:     getEnvAsBool("REDIS_ENABLED", true),
			KeyPrefix:   getEnv("REDIS_KEY_PREFIX", "panel"),
			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", "2s"),
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 10),
		},

		// Analyst panel
		Panel: PanelConfig{
			PolicyPath:        getEnv("PANEL_POLICY_PATH", ""),
			DefaultLookback:   getEnvAsInt("PANEL_DEFAULT_LOOKBACK", 5),
			FetchTimeout:      getEnvAsDuration("PANEL_FETCH_TIMEOUT", "5s"),
			CacheTTL:          getEnvAsDuration("PANEL_CACHE_TTL", "10m"),
			Watchlist:         getEnvAsList("PANEL_WATCHLIST"),
			WatchlistSchedule: getEnv("PANEL_WATCHLIST_SCHEDULE", "0 30 18 * * 1-5"),
			RetentionDays:     getEnvAsInt("PANEL_RETENTION_DAYS", 180),
			PruneSchedule:     getEnv("PANEL_PRUNE_SCHEDULE", "0 0 3 * * *"),
			RateLimitRPS:      getEnvAsFloat("API_RATE_LIMIT_RPS", 5),
			RateLimitBurst:    getEnvAsInt("API_RATE_LIMIT_BURST", 10),
			NarratorURL:       getEnv("PANEL_NARRATOR_URL", ""),
			NarratorTimeout:   getEnvAsDuration("PANEL_NARRATOR_TIMEOUT", "10s"),
			NarratorRPS:       getEnvAsFloat("PANEL_NARRATOR_RPS", 2),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Panel.DefaultLookback <= 0 {
		return fmt.Errorf("PANEL_DEFAULT_LOOKBACK must be positive")
	}

	if c.Panel.FetchTimeout <= 0 {
		return fmt.Errorf("PANEL_FETCH_TIMEOUT must be positive")
	}

	if c.Panel.RetentionDays < 0 {
		return fmt.Errorf("PANEL_RETENTION_DAYS must not be negative")
	}

	if c.Panel.NarratorURL != "" && c.Panel.NarratorTimeout <= 0 {
		return fmt.Errorf("PANEL_NARRATOR_TIMEOUT must be positive when PANEL_NARRATOR_URL is set")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",           // Current directory
		"../.env",        // From cmd/ directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
