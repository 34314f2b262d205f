package cache

import "time"

type settings struct {
	timeout   time.Duration
	scanCount int64
	now       func() time.Time
}

func defaultSettings() settings {
	return settings{
		timeout:   500 * time.Millisecond,
		scanCount: 100,
		now:       time.Now,
	}
}

// Option customizes a RemoteCache or a LocalCache.
type Option func(*settings)

// WithTimeout bounds each remote-tier round trip (default 500ms).
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithScanCount sets the page size of the incremental scan used by
// pattern invalidation (default 100).
func WithScanCount(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.scanCount = n
		}
	}
}

// WithClock injects the time source used for local-tier expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
