package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/limiter"
)

func TestHealthReporter_LocalOnly(t *testing.T) {
	store := newFakeStore()
	tiered := cache.NewTiered(nil, cache.NewLocalCache())
	lim := limiter.New(nil, nil)
	h := NewHealthReporter(store, tiered, lim)

	rep := h.Report(context.Background())

	assert.Equal(t, "healthy", rep.Status, "an unconfigured remote cache is acceptable, not degraded")
	assert.Equal(t, "ok", rep.Database)
	assert.Equal(t, "not_configured", rep.Cache)
}

func TestHealthReporter_DatabaseDown(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("backend unreachable")
	h := NewHealthReporter(store, cache.NewTiered(nil, cache.NewLocalCache()), limiter.New(nil, nil))

	rep := h.Report(context.Background())

	assert.Equal(t, "degraded", rep.Status)
	assert.Equal(t, "error", rep.Database)
}

func TestHealthReporter_CountsLocalState(t *testing.T) {
	store := newFakeStore()
	tiered := cache.NewTiered(nil, cache.NewLocalCache())
	lim := limiter.New(nil, nil)
	h := NewHealthReporter(store, tiered, lim)

	tiered.Set(context.Background(), "leaderboard:global", []byte("x"), limiter.Window)
	lim.Check(context.Background(), "u1", limiter.ClassDefault)
	lim.Check(context.Background(), "u2", limiter.ClassDefault)

	rep := h.Report(context.Background())
	assert.Equal(t, 1, rep.LocalCacheSize)
	assert.Equal(t, 2, rep.LocalRateLimitEntries)
}

func TestHealthRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeEnvelope(t, w)
	assert.True(t, got.Success)

	data, ok := got.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "not_configured", data["cache"])
}

func TestHealthReporter_NeverFails(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("boom")
	h := NewHealthReporter(store, cache.NewTiered(nil, cache.NewLocalCache()), limiter.New(nil, nil))

	assert.NotPanics(t, func() {
		rep := h.Report(context.Background())
		assert.Equal(t, "degraded", rep.Status)
	})
}
