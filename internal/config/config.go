package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/projection"
)

type Config struct {
	// Storage
	DataBackend   string
	SQLiteDBPath  string
	DataDirectory string

	// AMQP, optional fan-out of new alerts
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Household
	MonthlyIncome core.Money
	SavingsTarget core.Money

	// Worker
	EvaluationInterval time.Duration
	AlertRetention     time.Duration

	// Projection
	ProjectionBoundary  string
	ProjectionClamp     string
	ProjectionCacheSize int
	ProjectionCacheTTL  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:   getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "alerts.new"),

		MonthlyIncome: getEnvMoney("MONTHLY_INCOME", core.Money{}),
		SavingsTarget: getEnvMoney("SAVINGS_TARGET", core.Money{}),

		EvaluationInterval: getEnvDuration("EVALUATION_INTERVAL", time.Hour),
		AlertRetention:     getEnvDuration("ALERT_RETENTION", 90*24*time.Hour),

		ProjectionBoundary:  getEnv("PROJECTION_BOUNDARY", string(projection.BoundaryStrict)),
		ProjectionClamp:     getEnv("PROJECTION_CLAMP", projection.ClampTargetMonth),
		ProjectionCacheSize: getEnvInt("PROJECTION_CACHE_SIZE", 64),
		ProjectionCacheTTL:  getEnvDuration("PROJECTION_CACHE_TTL", 10*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.MonthlyIncome.Cents < 0 {
		errors = append(errors, fmt.Sprintf("invalid monthly income %s: must not be negative", c.MonthlyIncome))
	}
	if c.SavingsTarget.Cents < 0 {
		errors = append(errors, fmt.Sprintf("invalid savings target %s: must not be negative", c.SavingsTarget))
	}

	// Validate worker configuration
	if c.EvaluationInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid evaluation interval %v: must be at least 1 second", c.EvaluationInterval))
	} else if c.EvaluationInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid evaluation interval %v: must be at most 24 hours", c.EvaluationInterval))
	}
	if c.AlertRetention < 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid alert retention %v: must be at least 24 hours", c.AlertRetention))
	}

	// Validate projection policies
	if !projection.BoundaryPolicy(c.ProjectionBoundary).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid projection boundary '%s': must be 'strict' or 'inclusive'", c.ProjectionBoundary))
	}
	if _, err := projection.GetDayClamper(c.ProjectionClamp); err != nil {
		errors = append(errors, fmt.Sprintf("invalid projection clamp '%s': %v", c.ProjectionClamp, err))
	}
	if c.ProjectionCacheSize < 0 || c.ProjectionCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid projection cache size %d: must be between 0 and 10000", c.ProjectionCacheSize))
	}
	if c.ProjectionCacheSize > 0 && c.ProjectionCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid projection cache TTL %v: must be positive when caching is enabled", c.ProjectionCacheTTL))
	}

	// Validate logging
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvMoney(key string, defaultValue core.Money) core.Money {
	if value := os.Getenv(key); value != "" {
		if m, err := core.ParseMoney(value); err == nil {
			return m
		}
	}
	return defaultValue
}
