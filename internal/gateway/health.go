package gateway

import (
	"context"

	"github.com/coursehub/gateway/internal/upstream"
	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/limiter"
)

// HealthReport is the composite status served by the health route.
type HealthReport struct {
	Status                string `json:"status"`   // healthy | degraded
	Database              string `json:"database"` // ok | error
	Cache                 string `json:"cache"`    // connected | disconnected | not_configured
	LocalCacheSize        int    `json:"localCacheSize"`
	LocalRateLimitEntries int    `json:"localRateLimitEntries"`
}

// HealthReporter probes the boundary collaborators. Report never
// fails; a probe failure becomes the corresponding degraded field.
type HealthReporter struct {
	store   upstream.DataStore
	cache   *cache.TieredCache
	limiter *limiter.Limiter
}

func NewHealthReporter(store upstream.DataStore, c *cache.TieredCache, l *limiter.Limiter) *HealthReporter {
	return &HealthReporter{store: store, cache: c, limiter: l}
}

// Report probes the data store with a minimal read and the remote
// cache with a liveness command. An unconfigured remote cache is
// acceptable, not degraded: the system is designed to run without it.
func (h *HealthReporter) Report(ctx context.Context) HealthReport {
	rep := HealthReport{
		Status:   "healthy",
		Database: "ok",
		Cache:    "connected",
	}

	if _, err := h.store.Query(ctx, "health_check", nil); err != nil {
		rep.Database = "error"
		rep.Status = "degraded"
	}

	if !h.cache.Configured() {
		rep.Cache = "not_configured"
	} else if err := h.cache.Ping(ctx); err != nil {
		rep.Cache = "disconnected"
		rep.Status = "degraded"
	}

	rep.LocalCacheSize = h.cache.Local().Len()
	rep.LocalRateLimitEntries = h.limiter.Local().Len()
	return rep
}
