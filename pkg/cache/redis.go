package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RemoteCache is the shared tier. Every call carries its own timeout so
// a slow or dead server degrades into a tier miss instead of stalling
// the request.
type RemoteCache struct {
	client    *redis.Client
	timeout   time.Duration
	scanCount int64
}

// NewRemoteCache wraps an existing client.
func NewRemoteCache(client *redis.Client, opts ...Option) *RemoteCache {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &RemoteCache{
		client:    client,
		timeout:   s.timeout,
		scanCount: s.scanCount,
	}
}

// Get returns the value stored under key. A miss is (nil, false, nil);
// only transport-level problems surface as errors.
func (r *RemoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key with the given expiry.
func (r *RemoteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.client.Set(ctx, key, value, ttl).Err()
}

// DeletePattern removes every key matching the glob pattern using an
// incremental SCAN/DEL loop: one bounded page per round trip, repeated
// until the cursor returns to zero. It reports how many keys it
// removed.
func (r *RemoteCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	var cursor uint64
	for {
		scanCtx, cancel := context.WithTimeout(ctx, r.timeout)
		keys, next, err := r.client.Scan(scanCtx, cursor, pattern, r.scanCount).Result()
		cancel()
		if err != nil {
			return removed, err
		}

		if len(keys) > 0 {
			delCtx, cancel := context.WithTimeout(ctx, r.timeout)
			n, err := r.client.Del(delCtx, keys...).Result()
			cancel()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Ping probes liveness for the health endpoint.
func (r *RemoteCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.client.Ping(ctx).Err()
}
