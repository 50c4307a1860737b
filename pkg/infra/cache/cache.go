package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/promptgate/promptgate/pkg/config"
)

// NewClient builds the Redis client backing the usage ledger and the health
// monitor's reachability probe.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
