package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianpay/checkout-sdk/internal/adapters/zaplog"
	"github.com/meridianpay/checkout-sdk/internal/domain/ports"
	"github.com/meridianpay/checkout-sdk/internal/services/checkout"
	"github.com/meridianpay/checkout-sdk/internal/services/polling"
	"github.com/meridianpay/checkout-sdk/pkg/resilience"
)

// Config holds all SDK configuration
type Config struct {
	API     APIConfig
	Polling PollingConfig
	Payment PaymentConfig
	Logger  LoggerConfig
}

// APIConfig holds backend transport configuration
type APIConfig struct {
	Timeout int // Request timeout in seconds (default: 30)
}

// PollingConfig holds required-action status polling configuration
type PollingConfig struct {
	PendingDelayMS int // Delay between polls while pending (default: 1000)
	FailureDelayMS int // Delay before retrying a failed poll (default: 3000)
	MaxDurationMin int // Upper bound on one poll cycle (default: 10)
}

// PaymentConfig holds payment flow configuration
type PaymentConfig struct {
	Handling string // AUTO or MANUAL (default: AUTO)
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Timeout: getEnvAsInt("CHECKOUT_API_TIMEOUT", 30),
		},
		Polling: PollingConfig{
			PendingDelayMS: getEnvAsInt("CHECKOUT_POLL_PENDING_MS", 1000),
			FailureDelayMS: getEnvAsInt("CHECKOUT_POLL_FAILURE_MS", 3000),
			MaxDurationMin: getEnvAsInt("CHECKOUT_POLL_MAX_MIN", 10),
		},
		Payment: PaymentConfig{
			Handling: getEnv("CHECKOUT_PAYMENT_HANDLING", "AUTO"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	switch cfg.Payment.Handling {
	case string(checkout.HandlingAutomatic), string(checkout.HandlingManual):
	default:
		return nil, fmt.Errorf("CHECKOUT_PAYMENT_HANDLING must be AUTO or MANUAL, got %q", cfg.Payment.Handling)
	}
	if cfg.Polling.PendingDelayMS <= 0 || cfg.Polling.FailureDelayMS <= 0 || cfg.Polling.MaxDurationMin <= 0 {
		return nil, fmt.Errorf("polling delays and bound must be positive")
	}

	return cfg, nil
}

// CheckoutOptions maps the loaded configuration onto checkout service options
func (c *Config) CheckoutOptions() checkout.Options {
	return checkout.Options{
		Handling: checkout.PaymentHandling(c.Payment.Handling),
		Polling: polling.Config{
			Pending:     &resilience.FixedBackoff{Delay: time.Duration(c.Polling.PendingDelayMS) * time.Millisecond},
			Failure:     &resilience.FixedBackoff{Delay: time.Duration(c.Polling.FailureDelayMS) * time.Millisecond},
			MaxDuration: time.Duration(c.Polling.MaxDurationMin) * time.Minute,
		},
	}
}

// APITimeout returns the backend request timeout as a duration
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// BuildLogger constructs the logger described by the Logger section.
func (c *Config) BuildLogger() (ports.Logger, error) {
	if c.Logger.Development {
		return zaplog.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(c.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL %q is not a zap level: %w", c.Logger.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return zaplog.New(logger), nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
