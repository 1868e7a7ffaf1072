package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"creator-score/internal/common/config"
	"creator-score/internal/common/logger"
)

// RedisClient wraps go-redis with connection management.
type RedisClient struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisClient creates and verifies a Redis connection.
func NewRedisClient(cfg config.RedisConfig, log logger.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	log.Info("connected to redis", map[string]interface{}{
		"address": cfg.Address,
		"db":      cfg.DB,
	})

	return &RedisClient{client: client, logger: log}, nil
}

// Client exposes the underlying go-redis client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
