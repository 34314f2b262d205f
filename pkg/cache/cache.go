package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured is returned by Ping when no remote tier is attached.
var ErrNotConfigured = errors.New("cache: remote tier not configured")

// Tier names where a read was served from. Recorded for logging and
// metrics only; it is never persisted.
type Tier string

const (
	TierRemote Tier = "remote"
	TierLocal  Tier = "local"
	TierNone   Tier = "none"
)

// SetResult reports per-tier write outcomes. The tiers are independent
// and partial success is acceptable; no transaction spans them.
type SetResult struct {
	Remote bool
	Local  bool
}

// TieredCache fronts expensive reads with a remote-first, local-second
// lookup. remote may be nil when no remote cache is configured.
type TieredCache struct {
	remote *RemoteCache
	local  *LocalCache
}

// NewTiered combines the two tiers. local must not be nil; remote may
// be.
func NewTiered(remote *RemoteCache, local *LocalCache) *TieredCache {
	if local == nil {
		local = NewLocalCache()
	}
	return &TieredCache{remote: remote, local: local}
}

// Local exposes the in-process tier for maintenance sweeps and health
// reporting.
func (c *TieredCache) Local() *LocalCache {
	return c.local
}

// Configured reports whether a remote tier is attached.
func (c *TieredCache) Configured() bool {
	return c.remote != nil
}

// Ping probes the remote tier, returning ErrNotConfigured when none is
// attached.
func (c *TieredCache) Ping(ctx context.Context) error {
	if c.remote == nil {
		return ErrNotConfigured
	}
	return c.remote.Ping(ctx)
}

// Get returns the cached value for key and the tier that served it.
// The remote tier wins when it hits; a remote miss or failure falls
// through to the local tier. (nil, TierNone) means the caller should
// compute a fresh value and Set it back.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, Tier) {
	if c.remote != nil {
		if val, ok, err := c.remote.Get(ctx, key); err == nil && ok {
			return val, TierRemote
		}
	}
	if val, ok := c.local.Get(key); ok {
		return val, TierLocal
	}
	return nil, TierNone
}

// Set writes value to both tiers. The local write happens regardless of
// the remote outcome.
func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) SetResult {
	var res SetResult
	if c.remote != nil {
		res.Remote = c.remote.Set(ctx, key, value, ttl) == nil
	}
	c.local.Set(key, value, ttl)
	res.Local = true
	return res
}

// Invalidate removes every entry matching the pattern from both tiers
// and reports the total removed. The pattern carries at most a single
// trailing wildcard, e.g. "leaderboard:*". Best-effort: a remote
// failure does not stop the local pass, and a concurrent write may
// repopulate a just-removed key; TTLs bound the staleness either way.
func (c *TieredCache) Invalidate(ctx context.Context, pattern string) int {
	removed := 0
	if c.remote != nil {
		n, _ := c.remote.DeletePattern(ctx, pattern)
		removed += n
	}
	removed += c.local.InvalidatePrefix(strings.TrimSuffix(pattern, "*"))
	return removed
}
