package utils

import (
	"context"
	"fmt"
	"time"

	"pingparcel/config"

	"github.com/go-redis/redis/v8"
)

// NewCacheClient opens the Redis client used for read caching and verifies it
// with a ping. It returns nil, nil when no REDIS_ADDR is configured.
func NewCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	return client, nil
}
