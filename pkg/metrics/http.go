package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latencies for the API surface.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(method, route string, status int, duration time.Duration) {
	if h == nil {
		return
	}
	if h.duration != nil {
		h.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route)).Observe(duration.Seconds())
	}
	if h.requests != nil {
		h.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(route), strconv.Itoa(status)).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
