// Package cache provides a two-tier, cache-aside store for derived
// read results such as leaderboards and dashboard aggregates.
//
// The primary entry point is TieredCache:
//
//	value, tier := cache.Get(ctx, "leaderboard:global:0:20")
//
// Reads consult the shared remote tier first and fall back to an
// in-process map when the remote tier misses or fails. Writes go to
// both tiers independently; a failure on one never blocks the other.
// The caller repopulates the cache after computing a fresh value
// (cache-aside): the cache itself never talks to the source of the
// data.
//
// # Tiers
//
//   - RemoteCache: a Redis-backed tier shared by every gateway
//     replica. All calls carry a short timeout; a timeout or transport
//     error is reported to the caller as tier unavailability, never as
//     a request failure.
//
//   - LocalCache: a mutex-guarded map private to the process. Entries
//     carry an absolute expiry and an expired entry is treated as
//     absent (and removed) on read. The tier is copy-in/copy-out:
//     callers get their own byte slice and cannot corrupt a resident
//     entry by mutating a returned value.
//
// # Keys and invalidation
//
// Keys are colon-delimited components, namespace first:
//
//	leaderboard:course:c42:0:20
//	rank:4c6a…
//	dashboard_stats
//
// Invalidate accepts a pattern with a single trailing wildcard
// ("leaderboard:*"). On the remote tier it runs an incremental
// SCAN/DEL loop so no single command holds the server for an unbounded
// time. On the local tier the pattern is matched component-wise: the
// pattern "user:1*" matches "user:1" and "user:1:…" but never
// "user:10". Invalidation is best-effort and may race with a
// concurrent repopulation; entries always carry a TTL, so staleness
// stays bounded either way.
package cache
