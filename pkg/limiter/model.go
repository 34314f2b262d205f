package limiter

import "time"

// WindowSeconds is the length of the fixed counting window. Every class
// shares the same window; only the per-window budget differs.
const WindowSeconds = 60

// Window is WindowSeconds expressed as a duration.
const Window = WindowSeconds * time.Second

// Class selects the per-window request budget for a check.
type Class string

const (
	// ClassDefault applies to ordinary read and write traffic.
	ClassDefault Class = "default"
	// ClassStrict applies to administrative, creation, and deletion
	// operations.
	ClassStrict Class = "strict"
)

// Max returns the number of requests the class admits per window.
func (c Class) Max() int64 {
	if c == ClassStrict {
		return 10
	}
	return 100
}

// Decision is the outcome of a single admission check. It is a value
// computed fresh on every call and is never stored.
type Decision struct {
	// Allowed reports whether the request should be admitted.
	Allowed bool

	// Remaining is the number of requests left in the current window
	// after this one, floored at zero.
	Remaining int64

	// RetryAfter is zero when allowed; when denied it is the time until
	// the current window rolls over and the counter resets.
	RetryAfter time.Duration

	// ResetIn is the time until the current window rolls over,
	// regardless of the outcome. Callers use it for rate-limit headers.
	ResetIn time.Duration
}
