package limiter

import (
	"sync"
	"time"
)

type record struct {
	count   int64
	resetAt time.Time
}

// MemoryWindow is the in-process fallback counting tier.
//
// It is safe for concurrent use by multiple goroutines within one
// process, but its state is local to the process and is not shared
// across replicas. If several replicas run without a working remote
// tier, each enforces the budget independently and the effective limit
// is only approximate.
type MemoryWindow struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// NewMemoryWindow constructs a MemoryWindow with empty state.
func NewMemoryWindow(opts ...Option) *MemoryWindow {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &MemoryWindow{
		records: make(map[string]*record),
		now:     s.now,
	}
}

// Incr bumps the identifier's counter within the current window and
// returns the post-increment count together with the instant the window
// resets. A record whose reset time has passed is treated as absent and
// replaced by a fresh one, so expiry needs no background work to be
// correct.
func (m *MemoryWindow) Incr(identifier string) (count int64, resetAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, ok := m.records[identifier]
	if !ok || !rec.resetAt.After(now) {
		rec = &record{count: 1, resetAt: now.Add(Window)}
		m.records[identifier] = rec
		return rec.count, rec.resetAt
	}
	rec.count++
	return rec.count, rec.resetAt
}

// Sweep removes records whose window has passed and reports how many it
// dropped. It exists to bound memory, not for correctness: an expired
// record is treated as absent on the next access regardless.
func (m *MemoryWindow) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, rec := range m.records {
		if !rec.resetAt.After(now) {
			delete(m.records, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of resident records, expired or not. The
// health endpoint exposes it.
func (m *MemoryWindow) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
