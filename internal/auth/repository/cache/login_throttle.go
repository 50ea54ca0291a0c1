package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyPrefix = "auth:throttle:"

// RedisLoginThrottle is a fixed-window counter per key. The window starts on
// the first hit and the key expires with it.
type RedisLoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLoginThrottle(client *redis.Client, limit int, window time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client, limit: limit, window: window}
}

func (t *RedisLoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	if t.limit <= 0 {
		return true, nil
	}
	redisKey := throttleKeyPrefix + key

	// EXPIRE NX in the same transaction: a key can never outlive its window
	// without a TTL, and later hits do not extend it.
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, t.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(t.limit), nil
}
