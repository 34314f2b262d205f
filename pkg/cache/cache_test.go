package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return server, client
}

func newTestTiered(t *testing.T) (*miniredis.Miniredis, *TieredCache) {
	t.Helper()
	server, client := newTestRedis(t)
	return server, NewTiered(NewRemoteCache(client), NewLocalCache())
}

func TestTieredCache_SetThenGet(t *testing.T) {
	_, c := newTestTiered(t)
	ctx := context.Background()

	res := c.Set(ctx, "dashboard_stats", []byte(`{"students":42}`), time.Minute)
	assert.True(t, res.Remote)
	assert.True(t, res.Local)

	val, tier := c.Get(ctx, "dashboard_stats")
	assert.Equal(t, `{"students":42}`, string(val))
	assert.Equal(t, TierRemote, tier)
}

func TestTieredCache_RemoteExpiry(t *testing.T) {
	server, client := newTestRedis(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewTiered(NewRemoteCache(client), NewLocalCache(WithClock(func() time.Time { return now })))
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 20*time.Second)

	server.FastForward(21 * time.Second)
	now = now.Add(21 * time.Second)

	_, tier := c.Get(ctx, "k")
	assert.Equal(t, TierNone, tier, "an entry is never read past its expiry")
}

func TestTieredCache_FallsBackToLocal(t *testing.T) {
	server, c := newTestTiered(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	server.Close()

	val, tier := c.Get(ctx, "k")
	assert.Equal(t, "v", string(val))
	assert.Equal(t, TierLocal, tier)
}

func TestTieredCache_SetSurvivesRemoteFailure(t *testing.T) {
	server, c := newTestTiered(t)
	ctx := context.Background()

	server.Close()
	res := c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.False(t, res.Remote)
	assert.True(t, res.Local, "the local write must not depend on the remote one")

	val, tier := c.Get(ctx, "k")
	assert.Equal(t, "v", string(val))
	assert.Equal(t, TierLocal, tier)
}

func TestTieredCache_LocalOnly(t *testing.T) {
	c := NewTiered(nil, NewLocalCache())
	ctx := context.Background()

	res := c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.False(t, res.Remote)
	assert.True(t, res.Local)

	val, tier := c.Get(ctx, "k")
	assert.Equal(t, "v", string(val))
	assert.Equal(t, TierLocal, tier)

	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.Ping(ctx), ErrNotConfigured)
}

func TestTieredCache_Invalidate(t *testing.T) {
	_, c := newTestTiered(t)
	ctx := context.Background()

	c.Set(ctx, "leaderboard:global:0:20", []byte("a"), time.Minute)
	c.Set(ctx, "leaderboard:course:c1:0:20", []byte("b"), time.Minute)
	c.Set(ctx, "rank:u1", []byte("c"), time.Minute)

	removed := c.Invalidate(ctx, "leaderboard:*")
	// Two keys per tier.
	assert.Equal(t, 4, removed)

	_, tier := c.Get(ctx, "leaderboard:global:0:20")
	assert.Equal(t, TierNone, tier)
	_, tier = c.Get(ctx, "rank:u1")
	assert.NotEqual(t, TierNone, tier, "other prefixes must be untouched")
}

func TestTieredCache_InvalidateThenGetAbsent(t *testing.T) {
	_, c := newTestTiered(t)
	ctx := context.Background()

	c.Set(ctx, "dashboard_stats", []byte(`{"students":42}`), time.Minute)
	c.Invalidate(ctx, "dashboard_stats*")

	_, tier := c.Get(ctx, "dashboard_stats")
	assert.Equal(t, TierNone, tier)
}

func TestTieredCache_Invalidate_RemoteDown(t *testing.T) {
	server, c := newTestTiered(t)
	ctx := context.Background()

	c.Set(ctx, "leaderboard:global", []byte("a"), time.Minute)
	server.Close()

	removed := c.Invalidate(ctx, "leaderboard:*")
	assert.Equal(t, 1, removed, "the local pass must run despite the remote failure")

	_, tier := c.Get(ctx, "leaderboard:global")
	assert.Equal(t, TierNone, tier)
}

func TestRemoteCache_DeletePattern_Paged(t *testing.T) {
	_, client := newTestRedis(t)
	r := NewRemoteCache(client, WithScanCount(10))
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, r.Set(ctx, "leaderboard:"+string(rune('a'+i%26))+":"+string(rune('0'+i/26)), []byte("x"), time.Minute))
	}
	require.NoError(t, r.Set(ctx, "rank:u1", []byte("x"), time.Minute))

	removed, err := r.DeletePattern(ctx, "leaderboard:*")
	require.NoError(t, err)
	assert.Equal(t, 250, removed)

	_, ok, err := r.Get(ctx, "rank:u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoteCache_GetMissVsError(t *testing.T) {
	server, client := newTestRedis(t)
	r := NewRemoteCache(client)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "absent")
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, ok)

	server.Close()
	_, _, err = r.Get(ctx, "absent")
	assert.Error(t, err, "a dead server is an error, not a miss")
}
