package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

// Redis serialises ledger writers across processes sharing one Redis.
type Redis struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
}

// NewRedis creates a Redis-backed Locker.
func NewRedis(cfg *config.LockConfig) (*Redis, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewRedisWithClient(rdb, cfg), rdb
}

// NewRedisWithClient wraps an existing go-redis client.
func NewRedisWithClient(rdb redislock.RedisClient, cfg *config.LockConfig) *Redis {
	return &Redis{
		client:  redislock.New(rdb),
		ttl:     cfg.TTL,
		backoff: cfg.RetryBackoff,
		retries: cfg.MaxRetries,
	}
}

// Obtain acquires key, retrying with a linear backoff.
func (r *Redis) Obtain(ctx context.Context, key string) (port.Lock, error) {
	l, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.backoff), r.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrLedgerLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining redis lock %s: %w", key, err)
	}
	return l, nil
}
