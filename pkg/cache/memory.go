package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// LocalCache is the in-process fallback tier.
//
// It is safe for concurrent use within one process but shares nothing
// across replicas; when the remote tier is down, each replica serves
// from its own copy. Values are copied on the way in and on the way
// out, so a caller mutating a returned slice cannot corrupt the
// resident entry.
type LocalCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewLocalCache constructs a LocalCache with empty state.
func NewLocalCache(opts ...Option) *LocalCache {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &LocalCache{
		entries: make(map[string]entry),
		now:     s.now,
	}
}

// Get returns the value stored under key. An entry past its expiry is
// removed and reported as absent.
func (l *LocalCache) Get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(l.now()) {
		delete(l.entries, key)
		return nil, false
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Set stores a copy of value under key with the given expiry.
func (l *LocalCache) Set(key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = entry{
		value:     stored,
		expiresAt: l.now().Add(ttl),
	}
}

// InvalidatePrefix removes every entry whose key matches the prefix
// component-wise and reports how many it removed. The prefix is what
// remains of an invalidation pattern after its trailing wildcard is
// stripped.
func (l *LocalCache) InvalidatePrefix(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key := range l.entries {
		if prefixMatches(key, prefix) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// prefixMatches treats keys as colon-delimited components and matches
// on whole components, so the prefix "user:1" matches "user:1" and
// "user:1:rank" but never "user:10".
func prefixMatches(key, prefix string) bool {
	p := strings.TrimSuffix(prefix, ":")
	return key == p || strings.HasPrefix(key, p+":")
}

// Sweep removes expired entries and reports how many it dropped.
// Best-effort hygiene only: Get already treats expired entries as
// absent.
func (l *LocalCache) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if !e.expiresAt.After(now) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of resident entries, expired or not.
func (l *LocalCache) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
