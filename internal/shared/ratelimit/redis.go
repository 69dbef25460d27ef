package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window limiter shared across processes. Counters
// live in Redis keyed by client and window start, expiring on their own.
type RedisLimiter struct {
	client *redis.Client
	limits Limits
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limits Limits) *RedisLimiter {
	return &RedisLimiter{client: client, limits: limits, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()

	if l.limits.PerSecond > 0 {
		allowed, retryAfter, err := l.bump(ctx, fmt.Sprintf("ratelimit:%s:s:%d", key, now.Unix()), time.Second, l.limits.PerSecond, now.Truncate(time.Second))
		if err != nil || !allowed {
			return allowed, retryAfter, err
		}
	}
	if l.limits.PerMinute > 0 {
		allowed, retryAfter, err := l.bump(ctx, fmt.Sprintf("ratelimit:%s:m:%d", key, now.Unix()/60), time.Minute, l.limits.PerMinute, now.Truncate(time.Minute))
		if err != nil || !allowed {
			return allowed, retryAfter, err
		}
	}
	return true, 0, nil
}

func (l *RedisLimiter) bump(ctx context.Context, counterKey string, span time.Duration, limit int, windowStart time.Time) (bool, time.Duration, error) {
	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, span+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit counter %s: %w", counterKey, err)
	}
	if count.Val() > int64(limit) {
		return false, windowStart.Add(span).Sub(l.now()), nil
	}
	return true, 0, nil
}
