package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow is the remote counting tier. It keeps one counter per
// (identifier, window index) pair and bumps it with a pipelined
// INCR+EXPIRE, so the increment and the expiry land in a single round
// trip and a crash between them cannot leave an unbounded-lifetime key.
type RedisWindow struct {
	client   *redis.Client
	prefix   string
	timeout  time.Duration
	recorder MetricsRecorder
}

// NewRedisWindow constructs the remote tier on an existing client. The
// client is not pinged here; an unreachable server simply makes every
// Incr report unavailability, which callers treat as a fallback signal
// rather than a hard failure.
func NewRedisWindow(client *redis.Client, opts ...Option) *RedisWindow {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &RedisWindow{
		client:   client,
		prefix:   s.prefix,
		timeout:  s.timeout,
		recorder: s.recorder,
	}
}

// Incr atomically increments the counter for the identifier's current
// window and refreshes its expiry, returning the post-increment count.
// Any transport error, timeout, or nonsensical count is reported as an
// error so the caller can branch to the local tier.
func (r *RedisWindow) Incr(ctx context.Context, identifier string, windowIndex int64) (int64, error) {
	key := r.prefix + identifier + ":" + strconv.FormatInt(windowIndex, 10)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.recorder.Add("ratelimit.remote.error", 1, nil)
		return 0, err
	}
	r.recorder.Observe("ratelimit.remote.latency", time.Since(start).Seconds(), nil)

	return incr.Val(), nil
}
