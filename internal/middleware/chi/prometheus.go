package chi

import (
	"net/http"
	"strconv"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go401-gateway/internal/metrics"
)

// PrometheusHandler serves the default registry
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsCollector records request counts and latency per route pattern, so
// session ids never become label values.
func MetricsCollector(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chiv5.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.RecordRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}
