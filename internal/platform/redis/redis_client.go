// Package redis opens the optional Redis connection used for prediction caching.
package redis

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection and cache settings.
type Config struct {
	Host     string
	Port     string
	Password string
	CacheTTL time.Duration
}

// LoadConfig loads Redis configuration from environment variables.
// An unparsable PREDICTION_CACHE_TTL falls back to 10 minutes.
func LoadConfig() Config {
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	ttl, err := time.ParseDuration(os.Getenv("PREDICTION_CACHE_TTL"))
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		CacheTTL: ttl,
	}
}

// Enabled reports whether a Redis host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

// Addr returns host:port.
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}
