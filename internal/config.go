package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal/domain"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Firm business constants handed to the calculation engine
	DefaultAttorneyFeePercentage decimal.Decimal
	AlertThresholds              domain.AlertThresholds

	// Limitations period used to derive a statute deadline from the date of
	// incident when a case has none recorded. Zero disables derivation.
	StatuteYears int

	// Origins allowed to call the API from the browser (the hosted UI)
	CORSAllowedOrigins []string

	// Per-IP request budget for the calculation API
	RateLimitPerMinute int

	// Server timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		AlertThresholds: domain.AlertThresholds{
			Critical: getEnvInt("ALERT_CRITICAL_DAYS", domain.DefaultAlertThresholds.Critical),
			Warning:  getEnvInt("ALERT_WARNING_DAYS", domain.DefaultAlertThresholds.Warning),
			Caution:  getEnvInt("ALERT_CAUTION_DAYS", domain.DefaultAlertThresholds.Caution),
		},

		StatuteYears: getEnvInt("STATUTE_OF_LIMITATIONS_YEARS", 0),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Attorney fee default
	feeStr := getEnv("DEFAULT_ATTORNEY_FEE_PERCENTAGE", domain.DefaultAttorneyFeePercentage.String())
	fee, err := decimal.NewFromString(feeStr)
	if err != nil || !domain.WithinMoneyRange(fee) {
		return nil, fmt.Errorf("DEFAULT_ATTORNEY_FEE_PERCENTAGE must be a number, got: %s", feeStr)
	}
	if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("DEFAULT_ATTORNEY_FEE_PERCENTAGE must be between 0 and 100, got: %s", feeStr)
	}
	cfg.DefaultAttorneyFeePercentage = fee

	// Parse allowed origins from comma-separated environment variable.
	// Set but empty means no cross-origin callers; unset only falls back to
	// the local UI dev server in development.
	originsStr, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS")
	if !ok && cfg.Env == "development" {
		originsStr = "http://localhost:5173"
	}
	for _, origin := range strings.Split(originsStr, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, trimmed)
		}
	}

	if err := cfg.AlertThresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alert thresholds: %w", err)
	}

	if cfg.StatuteYears < 0 {
		return nil, fmt.Errorf("STATUTE_OF_LIMITATIONS_YEARS must not be negative, got: %d", cfg.StatuteYears)
	}

	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got: %d", cfg.RateLimitPerMinute)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
