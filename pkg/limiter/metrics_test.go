package limiter

import (
	"context"
	"testing"
)

// MockRecorder captures metrics in memory for assertion
type MockRecorder struct {
	Counters map[string]float64
	Timings  map[string][]float64
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		Counters: make(map[string]float64),
		Timings:  make(map[string][]float64),
	}
}

func (m *MockRecorder) Add(name string, value float64, tags map[string]string) {
	m.Counters[name] += value
}

func (m *MockRecorder) Observe(name string, value float64, tags map[string]string) {
	m.Timings[name] = append(m.Timings[name], value)
}

func TestRedisWindow_Metrics(t *testing.T) {
	_, client := newTestRedis(t)
	mock := NewMockRecorder()
	w := NewRedisWindow(client, WithRecorder(mock))

	if _, err := w.Incr(context.Background(), "u1", 100); err != nil {
		t.Fatalf("Incr failed: %v", err)
	}

	if timings, ok := mock.Timings["ratelimit.remote.latency"]; !ok || len(timings) != 1 {
		t.Error("Expected 1 latency observation for a successful round trip")
	}
	if mock.Counters["ratelimit.remote.error"] != 0 {
		t.Error("Expected no error counter on success")
	}
}

func TestLimiter_FallbackMetric(t *testing.T) {
	server, client := newTestRedis(t)
	mock := NewMockRecorder()
	l := New(NewRedisWindow(client, WithRecorder(mock)), nil, WithRecorder(mock))

	server.Close()
	l.Check(context.Background(), "u1", ClassDefault)

	if mock.Counters["ratelimit.fallback"] != 1 {
		t.Errorf("Expected 1 fallback increment, got %v", mock.Counters["ratelimit.fallback"])
	}
	if mock.Counters["ratelimit.remote.error"] != 1 {
		t.Errorf("Expected 1 remote error increment, got %v", mock.Counters["ratelimit.remote.error"])
	}
}
