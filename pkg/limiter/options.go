package limiter

import "time"

type settings struct {
	prefix   string
	timeout  time.Duration
	now      func() time.Time
	recorder MetricsRecorder
}

func defaultSettings() settings {
	return settings{
		prefix:   "ratelimit:",
		timeout:  500 * time.Millisecond,
		now:      time.Now,
		recorder: &NoOpMetricsRecorder{},
	}
}

// Option customizes a RedisWindow or a Limiter.
type Option func(*settings)

// WithPrefix sets the key prefix used on the remote tier
// (default "ratelimit:").
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithTimeout bounds each remote-tier round trip (default 500ms). Keep
// it well below the host's request timeout so the local fallback has
// room to run.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock injects the time source, used by tests to step across
// window boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder injects a custom metrics backend.
func WithRecorder(r MetricsRecorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}
