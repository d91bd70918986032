package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/casedesk/internal"
	"github.com/DukeRupert/casedesk/internal/handler"
	"github.com/DukeRupert/casedesk/internal/metrics"
	"github.com/DukeRupert/casedesk/internal/middleware"
	"github.com/DukeRupert/casedesk/internal/service"
)

// routeDeps are the collaborators the router is built from.
type routeDeps struct {
	cfg     *internal.Config
	calc    service.CaseCalculator
	limiter *middleware.RateLimiter
	now     func() time.Time
	logger  *slog.Logger
}

// newRouter wires handlers and the middleware stack into one http.Handler.
func newRouter(d routeDeps) http.Handler {
	isSecure := d.cfg.Env != "development"

	// ==========================================================================
	// Middleware
	// ==========================================================================

	loggingMw := middleware.NewRequestLoggingMiddleware(d.logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	rateLimitMw := middleware.NewRateLimitMiddleware(d.limiter, d.logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(d.cfg.MetricsUsername, d.cfg.MetricsPassword, d.logger)
	if !metricsAuthMw.Enabled() {
		d.logger.Warn("metrics endpoint is unauthenticated; set METRICS_USERNAME and METRICS_PASSWORD")
	}

	// ==========================================================================
	// Routes
	// ==========================================================================

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	calcHandler := handler.NewCalcHandler(d.calc, d.now, d.logger)
	calcHandler.RegisterRoutes(mux)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, d.logger)
	})

	// Outermost first: metrics see every response, including rejected ones
	stack := middleware.Stack(
		metrics.Middleware,
		loggingMw.Handler,
		securityMw.Handler,
		middleware.NewCORS(d.cfg.CORSAllowedOrigins),
		rateLimitMw.Handler,
	)
	return stack(mux)
}
