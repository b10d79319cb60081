package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kinaskak/storefront-backend/pkg/metrics"
)

// Metrics records request counts and latencies labeled by the chi route
// pattern rather than the raw path, so dynamic segments don't explode
// cardinality.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpMetrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpMetrics.Observe(r.Method, metricRoute(r), status, time.Since(start))
		})
	}
}

func metricRoute(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
