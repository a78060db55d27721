package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/auth"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/service"
)

// readiness reports whether the server still accepts work.
type readiness interface {
	Closed() bool
}

func newRouter(
	svc service.Service,
	validator *auth.JWTValidator,
	ready readiness,
	monitoring bool,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack. No request timeout: the event stream is long-lived and
	// every other handler only queues work on a controller.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Closed() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	if monitoring {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled", zap.String("path", "/metrics"))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(validator))
		service.RegisterRoutes(r, svc, logger)
	})

	return r
}

// requestMetrics records every request by its route pattern and logs it at debug level.
func requestMetrics(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
