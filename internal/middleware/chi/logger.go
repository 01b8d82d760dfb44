package chi

import (
	"net/http"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger returns a Chi middleware for structured logging
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			// Route params are filled in by the router once the request is served.
			if rctx := chiv5.RouteContext(r.Context()); rctx != nil {
				if sid := rctx.URLParam("sessionID"); sid != "" {
					fields = append(fields, zap.String("session_id", sid))
				}
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				logger.Warn("Request", fields...)
			default:
				logger.Info("Request", fields...)
			}
		})
	}
}
