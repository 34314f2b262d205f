package limiter

import (
	"context"
	"time"
)

// Limiter combines the remote and local counting tiers behind a single
// admission check. The remote tier is authoritative when reachable; the
// local tier is a single-process degrade path.
type Limiter struct {
	remote   *RedisWindow // nil when no remote cache is configured
	local    *MemoryWindow
	now      func() time.Time
	recorder MetricsRecorder
}

// New constructs a Limiter. remote may be nil, in which case every
// check runs against the local tier only.
func New(remote *RedisWindow, local *MemoryWindow, opts ...Option) *Limiter {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if local == nil {
		local = NewMemoryWindow(WithClock(s.now))
	}
	return &Limiter{
		remote:   remote,
		local:    local,
		now:      s.now,
		recorder: s.recorder,
	}
}

// Local exposes the fallback tier for maintenance sweeps and health
// reporting.
func (l *Limiter) Local() *MemoryWindow {
	return l.local
}

// Check decides whether one request from identifier should be admitted
// under the class's budget. It never returns an error: a remote-tier
// failure silently falls through to the local tier, and a denial is
// always authoritative once a count has been obtained.
func (l *Limiter) Check(ctx context.Context, identifier string, class Class) Decision {
	now := l.now()
	max := class.Max()
	resetIn := Window - time.Duration(now.Unix()%WindowSeconds)*time.Second

	if l.remote != nil {
		windowIndex := now.Unix() / WindowSeconds
		count, err := l.remote.Incr(ctx, identifier, windowIndex)
		if err == nil && count > 0 {
			return decide(count, max, resetIn)
		}
		l.recorder.Add("ratelimit.fallback", 1, map[string]string{"class": string(class)})
	}

	count, resetAt := l.local.Incr(identifier)
	return decide(count, max, resetAt.Sub(now))
}

func decide(count, max int64, resetIn time.Duration) Decision {
	d := Decision{
		Allowed:   count <= max,
		Remaining: max - count,
		ResetIn:   resetIn,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = resetIn
	}
	return d
}
