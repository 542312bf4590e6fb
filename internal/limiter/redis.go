package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis counts failures in a sliding window and sets a lock key once maxFails is reached.
type Redis struct {
	client   redis.Cmdable
	window   time.Duration
	maxFails int64
	blockFor time.Duration
}

// NewRedis constructs a Redis-backed limiter.
func NewRedis(client redis.Cmdable, window time.Duration, maxFails int, blockFor time.Duration) *Redis {
	if maxFails <= 0 {
		maxFails = 5
	}
	return &Redis{client: client, window: window, maxFails: int64(maxFails), blockFor: blockFor}
}

func failKey(email, ipHash string) string { return "login:fail:" + email + ":" + ipHash }
func lockKey(email, ipHash string) string { return "login:lock:" + email + ":" + ipHash }

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Redis) Allow(ctx context.Context, email, ipHash string) (bool, time.Duration, error) {
	ttl, err := l.client.PTTL(ctx, lockKey(email, ipHash)).Result()
	if err != nil {
		return false, 0, err
	}
	// PTTL returns a negative duration when the key is missing.
	if ttl > 0 {
		return false, ttl, nil
	}
	return true, 0, nil
}

// Success resets counters for (email, ip).
func (l *Redis) Success(ctx context.Context, email, ipHash string) error {
	return l.client.Del(ctx, failKey(email, ipHash), lockKey(email, ipHash)).Err()
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Redis) Failure(ctx context.Context, email, ipHash string) (bool, time.Duration, error) {
	key := failKey(email, ipHash)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, err
	}

	if incr.Val() < l.maxFails {
		return false, 0, nil
	}

	if err := l.client.Set(ctx, lockKey(email, ipHash), 1, l.blockFor).Err(); err != nil {
		return false, 0, err
	}
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return true, l.blockFor, err
	}
	return true, l.blockFor, nil
}
