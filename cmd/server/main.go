package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal"
	"github.com/DukeRupert/casedesk/internal/middleware"
	"github.com/DukeRupert/casedesk/internal/service"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize services
	calc := service.NewCaseCalculator(service.CalculatorConfig{
		DefaultFeePercentage: decimal.NewNullDecimal(cfg.DefaultAttorneyFeePercentage),
		Thresholds:           cfg.AlertThresholds,
		StatuteYears:         cfg.StatuteYears,
	}, logger)
	logger.Info("Calculator ready",
		"default_fee_percentage", cfg.DefaultAttorneyFeePercentage.String(),
		"alert_critical_days", cfg.AlertThresholds.Critical,
		"alert_warning_days", cfg.AlertThresholds.Warning,
		"alert_caution_days", cfg.AlertThresholds.Caution,
		"statute_years", cfg.StatuteYears,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(routeDeps{
			cfg:     cfg,
			calc:    calc,
			limiter: limiter,
			now:     time.Now,
			logger:  logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
