package database

import (
	"context"
	"fmt"
	"time"

	"habitxp/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis when an address is configured. It returns
// nil, nil when Redis is not configured.
func InitRedis(ctx context.Context, cfg config.RateLimitConfig) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
