package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("/api/pedidos", "POST", "201", 35*time.Millisecond)
	m.ObserveRequest("/api/pedidos", "POST", "201", 12*time.Millisecond)
	m.ObserveRequest("", "GET", "200", time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/pedidos", "POST", "201")); got != 2 {
		t.Fatalf("expected 2 pedidos requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unknown", "GET", "200")); got != 1 {
		t.Fatalf("expected empty route to be normalized, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("/api/salud", "GET", "200", time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("/api/salud", "GET", "200", time.Millisecond)
}
