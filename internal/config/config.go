package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Swapper identification strategies accepted by SWAPPER_STRATEGY.
const (
	StrategyEscalation   = "escalation"
	StrategyLargestDelta = "largest_delta"
)

// Config holds all configuration for Swaplens
type Config struct {
	// Redis configuration
	RedisURL string

	// Database configuration
	DBName     string
	DBHost     string
	DBUser     string
	DBPassword string
	DBPort     string
	DBSSLMode  string

	// Indexer configuration
	IndexerEndpoints []string

	// Worker configuration
	MinWorkers int
	MaxWorkers int

	// Classification configuration
	SwapperStrategy       string
	ProtocolTag           string
	RentThreshold         decimal.Decimal
	IntermediateEpsilon   decimal.Decimal
	DustThreshold         decimal.Decimal
	SignificanceThreshold decimal.Decimal
	ExtraExcludedAddrs    []string
	PriorityMints         []string
	DisableDerivedCheck   bool

	// Logging configuration
	LogLevel string

	// Metrics configuration
	MetricsPort string
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	cfg := Config{
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		DBName:              getEnv("DB_NAME", ""),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBSSLMode:           getEnv("DB_SSL_MODE", "disable"),
		SwapperStrategy:     getEnv("SWAPPER_STRATEGY", StrategyEscalation),
		ProtocolTag:         getEnv("PROTOCOL_TAG", "unknown"),
		ExtraExcludedAddrs:  parseListEnv("EXTRA_EXCLUDED_ADDRESSES"),
		PriorityMints:       parseListEnv("PRIORITY_MINTS"),
		DisableDerivedCheck: getEnv("DISABLE_DERIVED_ADDRESS_CHECK", "") == "true",
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MetricsPort:         getEnv("METRICS_PORT", "9100"),
	}

	cfg.IndexerEndpoints = parseListEnv("INDEXER_ENDPOINTS")
	if len(cfg.IndexerEndpoints) == 0 {
		return cfg, fmt.Errorf("INDEXER_ENDPOINTS environment variable is required")
	}

	var err error
	cfg.MinWorkers, err = parseIntEnv("MIN_WORKERS", 4)
	if err != nil {
		return cfg, fmt.Errorf("invalid MIN_WORKERS: %w", err)
	}

	cfg.MaxWorkers, err = parseIntEnv("MAX_WORKERS", 50)
	if err != nil {
		return cfg, fmt.Errorf("invalid MAX_WORKERS: %w", err)
	}

	cfg.RentThreshold, err = parseDecimalEnv("RENT_THRESHOLD", "0.01")
	if err != nil {
		return cfg, fmt.Errorf("invalid RENT_THRESHOLD: %w", err)
	}

	cfg.IntermediateEpsilon, err = parseDecimalEnv("INTERMEDIATE_EPSILON", "0.000000001")
	if err != nil {
		return cfg, fmt.Errorf("invalid INTERMEDIATE_EPSILON: %w", err)
	}

	cfg.DustThreshold, err = parseDecimalEnv("DUST_THRESHOLD", "0.001")
	if err != nil {
		return cfg, fmt.Errorf("invalid DUST_THRESHOLD: %w", err)
	}

	cfg.SignificanceThreshold, err = parseDecimalEnv("SIGNIFICANCE_THRESHOLD", "0.01")
	if err != nil {
		return cfg, fmt.Errorf("invalid SIGNIFICANCE_THRESHOLD: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that the configuration is valid
func (c Config) validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if len(c.IndexerEndpoints) == 0 {
		return fmt.Errorf("at least one indexer endpoint is required")
	}

	if c.MinWorkers < 1 {
		return fmt.Errorf("MIN_WORKERS must be at least 1")
	}

	if c.MaxWorkers < c.MinWorkers {
		return fmt.Errorf("MAX_WORKERS must be greater than or equal to MIN_WORKERS")
	}

	switch c.SwapperStrategy {
	case StrategyEscalation, StrategyLargestDelta:
	default:
		return fmt.Errorf("invalid SWAPPER_STRATEGY: %s (must be %s or %s)",
			c.SwapperStrategy, StrategyEscalation, StrategyLargestDelta)
	}

	if c.RentThreshold.Sign() <= 0 {
		return fmt.Errorf("RENT_THRESHOLD must be positive")
	}

	if c.IntermediateEpsilon.Sign() <= 0 {
		return fmt.Errorf("INTERMEDIATE_EPSILON must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid LOG_LEVEL: %s (must be one of: trace, debug, info, warn, error, fatal, panic)", c.LogLevel)
	}

	return nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an integer environment variable with a default value
func parseIntEnv(key string, defaultValue int) (int, error) {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(str)
}

// parseDecimalEnv parses a decimal environment variable with a default value
func parseDecimalEnv(key, defaultValue string) (decimal.Decimal, error) {
	str := os.Getenv(key)
	if str == "" {
		str = defaultValue
	}
	return decimal.NewFromString(str)
}

// parseListEnv parses a comma-separated environment variable, trimming
// whitespace and dropping empty entries
func parseListEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var values []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}
