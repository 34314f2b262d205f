// Package limiter provides two-tier admission control based on fixed
// window counting.
//
// The primary entry point is Limiter.Check:
//
//	dec := limiter.Check(ctx, identifier, limiter.ClassDefault)
//
// The returned Decision contains whether the request is allowed, how
// many requests remain in the current window, and timing hints for
// callers that want to set rate-limit headers (for example,
// Retry-After).
//
// # Overview
//
// Requests are counted per identifier within discrete, non-overlapping
// windows of WindowSeconds. The window index is floor(now /
// WindowSeconds), so every process that shares a clock and the remote
// tier agrees on which window a request belongs to. A request is
// admitted while the window's count stays within the class budget:
//
//   - ClassDefault: 100 requests per window
//   - ClassStrict: 10 requests per window, for administrative,
//     creation, and deletion operations
//
// # Tiers
//
// The package provides two counting backends behind one check:
//
//   - RedisWindow: the shared remote tier. A pipelined INCR+EXPIRE
//     bumps the (identifier, window) counter and refreshes its expiry
//     in one round trip, which makes concurrent checks from many
//     processes safe without any compare-and-swap.
//
//   - MemoryWindow: an in-process fallback backed by a Go map and a
//     mutex. It is correct within a single process only; when multiple
//     replicas degrade to it simultaneously, the enforced limit is the
//     per-replica budget, not a global one.
//
// Limiter prefers the remote tier and falls back to MemoryWindow when
// the remote tier is unconfigured or a call to it fails. The fallback
// is an explicit branch on the error return, not a recovery handler.
//
// # Failure Policy
//
// Check never returns an error. A remote-tier failure is absorbed by
// the fallback; once either tier has produced a count, the decision is
// authoritative — a count over budget always denies. Only if no tier
// can produce a count at all (which the in-process map cannot
// experience) would the limiter admit by default.
//
// # Maintenance
//
// MemoryWindow records for past windows are treated as absent on
// access, so correctness needs no background work. Call Sweep
// periodically to actually release the memory; Len reports resident
// records for health reporting.
package limiter
