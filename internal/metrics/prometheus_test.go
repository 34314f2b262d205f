package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Add(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.Add("gateway.request", 1, map[string]string{"class": "default"})
	rec.Add("gateway.request", 1, map[string]string{"class": "default"})
	rec.Add("gateway.request", 1, map[string]string{"class": "strict"})

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() == "gateway_request_total" {
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 3.0, total)
}

func TestPrometheusRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.Observe("ratelimit.remote.latency", 0.003, nil)
	rec.Observe("ratelimit.remote.latency", 0.007, nil)

	count, err := testutil.GatherAndCount(reg, "ratelimit_remote_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both observations land in one series")
}

func TestPrometheusRecorder_DistinctTagSets(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	// Same name with different tag sets must not collide on
	// registration.
	rec.Add("gateway.cache.hit", 1, map[string]string{"tier": "remote"})
	rec.Add("gateway.cache.hit", 1, map[string]string{"tier": "local"})

	count, err := testutil.GatherAndCount(reg, "gateway_cache_hit_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
