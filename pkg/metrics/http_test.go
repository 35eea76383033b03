package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe(http.MethodPost, "/api/v1/bookings", http.StatusCreated, 20*time.Millisecond)
	m.Observe(http.MethodPost, "/api/v1/bookings", http.StatusCreated, 30*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/api/v1/bookings", "201")); got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unknown", "404")); got != 1 {
		t.Fatalf("expected unknown route label, got %f", got)
	}

	var noop *HTTPMetrics
	noop.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}
