package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCounter is a fixed-window Counter shared by every instance pointing at
// the same Redis. Redis errors fail open.
type RedisCounter struct {
	client  *redis.Client
	log     *zap.Logger
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisCounter allows limit attempts per window under keys starting with prefix.
func NewRedisCounter(client *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RedisCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisCounter{
		client:  client,
		log:     logger,
		prefix:  prefix,
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

// Allow increments the key's counter, starting its window on the first hit.
func (rc *RedisCounter) Allow(key string) bool {
	if rc.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	k := rc.prefix + key
	n, err := rc.client.Incr(ctx, k).Result()
	if err != nil {
		rc.log.Warn("redis rate limiter error", zap.String("op", "incr"), zap.Error(err))
		return true
	}
	if n == 1 {
		if err := rc.client.Expire(ctx, k, rc.window).Err(); err != nil {
			rc.log.Warn("redis rate limiter error", zap.String("op", "expire"), zap.Error(err))
		}
	}
	return int(n) <= rc.limit
}

// Reset deletes the key's counter.
func (rc *RedisCounter) Reset(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()
	if err := rc.client.Del(ctx, rc.prefix+key).Err(); err != nil {
		rc.log.Warn("redis rate limiter error", zap.String("op", "del"), zap.Error(err))
	}
}
