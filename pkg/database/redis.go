package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"branchstock/internal/config"
)

// ConnectRedis returns a ready redis client, or nil when redis is disabled
// or unreachable. Callers must tolerate a nil client; the API runs without
// a cache backend.
func ConnectRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
