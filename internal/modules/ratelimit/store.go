package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tripgen:ratelimit:"

// RedisLimiter is a fixed-window counter shared by every API replica.
type RedisLimiter struct {
	rdb    *redis.Client
	policy Policy
	now    func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, policy Policy) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, policy: policy, now: time.Now}
}

func (l *RedisLimiter) windowKey(key string) string {
	slot := l.now().UnixNano() / int64(l.policy.Window)
	return fmt.Sprintf("%s%s:%d", keyPrefix, key, slot)
}

// Allow increments the counter for the current window and sets its expiry in the
// same transaction.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.policy.Enabled() {
		return true, nil
	}
	k := l.windowKey(key)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.policy.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return incr.Val() <= int64(l.policy.Requests), nil
}
