// Package metrics bridges the limiter's MetricsRecorder seam to
// Prometheus. Series are registered lazily on first use, one per
// distinct name and tag set.
package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements limiter.MetricsRecorder on a
// Prometheus registerer. Safe for concurrent use.
type PrometheusRecorder struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

// NewPrometheusRecorder builds a recorder on reg, typically
// prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	return &PrometheusRecorder{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func (p *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {
	p.counter(name, tags).Add(value)
}

func (p *PrometheusRecorder) Observe(name string, value float64, tags map[string]string) {
	p.histogram(name, tags).Observe(value)
}

func (p *PrometheusRecorder) counter(name string, tags map[string]string) prometheus.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := seriesKey(name, tags)
	if c, ok := p.counters[key]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        metricName(name) + "_total",
		Help:        "Counter recorded by the gateway under the name " + name + ".",
		ConstLabels: tags,
	})
	p.reg.MustRegister(c)
	p.counters[key] = c
	return c
}

func (p *PrometheusRecorder) histogram(name string, tags map[string]string) prometheus.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := seriesKey(name, tags)
	if h, ok := p.histograms[key]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        metricName(name) + "_seconds",
		Help:        "Timing recorded by the gateway under the name " + name + ".",
		ConstLabels: tags,
	})
	p.reg.MustRegister(h)
	p.histograms[key] = h
	return h
}

// metricName maps a dotted recorder name onto the Prometheus charset.
func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

// seriesKey makes a stable map key from the name and the sorted tags.
func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(tags[k])
	}
	return b.String()
}
