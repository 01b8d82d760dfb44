package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"go401-gateway/internal/response"
)

// Checker is a dependency probed by the readiness endpoint
type Checker interface {
	TestConnection(ctx context.Context) error
}

// StatsSource reports statistics for the readiness endpoint
type StatsSource interface {
	GetMetrics() map[string]interface{}
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"service": "go401-gateway",
	}, nil)
}

// Ready probes every dependency. Any failing check makes the service unready.
func Ready(checks map[string]Checker, stats map[string]StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		var failed []string
		for name, c := range checks {
			if err := c.TestConnection(ctx); err != nil {
				results[name] = "unhealthy: " + err.Error()
				failed = append(failed, name+": "+err.Error())
			} else {
				results[name] = "healthy"
			}
		}

		body := map[string]interface{}{
			"status": "ready",
			"checks": results,
		}
		if len(stats) > 0 {
			s := make(map[string]interface{}, len(stats))
			for name, src := range stats {
				s[name] = src.GetMetrics()
			}
			body["stats"] = s
		}

		if len(failed) > 0 {
			sort.Strings(failed)
			response.ErrorWithDetails(w, "One or more dependencies are unhealthy",
				strings.Join(failed, "; "), http.StatusServiceUnavailable)
			return
		}
		response.Success(w, body, nil)
	}
}
