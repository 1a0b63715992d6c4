package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared between processes. Redis enforces the TTL; any
// error is logged and reported as a miss.
type Redis struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return &Redis{client: client, prefix: opts.Prefix}
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("redis cache get failed", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}
