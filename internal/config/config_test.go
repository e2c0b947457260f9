package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("INDEXER_ENDPOINTS", "https://api.example.com?api-key=a, https://backup.example.com?api-key=b")
	t.Setenv("DB_NAME", "swaplens")
	t.Setenv("DB_USER", "swaplens")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"https://api.example.com?api-key=a", "https://backup.example.com?api-key=b"}, cfg.IndexerEndpoints)
	assert.Equal(t, 4, cfg.MinWorkers)
	assert.Equal(t, 50, cfg.MaxWorkers)
	assert.Equal(t, StrategyEscalation, cfg.SwapperStrategy)
	assert.Equal(t, "unknown", cfg.ProtocolTag)
	assert.True(t, cfg.RentThreshold.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, cfg.DustThreshold.Equal(decimal.RequireFromString("0.001")))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DisableDerivedCheck)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWAPPER_STRATEGY", "largest_delta")
	t.Setenv("RENT_THRESHOLD", "0.05")
	t.Setenv("PROTOCOL_TAG", "jupiter")
	t.Setenv("PRIORITY_MINTS", "MintA, MintB")
	t.Setenv("MIN_WORKERS", "2")
	t.Setenv("MAX_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StrategyLargestDelta, cfg.SwapperStrategy)
	assert.True(t, cfg.RentThreshold.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, "jupiter", cfg.ProtocolTag)
	assert.Equal(t, []string{"MintA", "MintB"}, cfg.PriorityMints)
	assert.Equal(t, 2, cfg.MinWorkers)
	assert.Equal(t, 8, cfg.MaxWorkers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad strategy", "SWAPPER_STRATEGY", "coin_flip"},
		{"bad workers", "MIN_WORKERS", "zero"},
		{"negative rent threshold", "RENT_THRESHOLD", "-1"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"max below min", "MAX_WORKERS", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_RequiresEndpoints(t *testing.T) {
	t.Setenv("DB_NAME", "swaplens")
	t.Setenv("DB_USER", "swaplens")
	t.Setenv("INDEXER_ENDPOINTS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBHost: "db", DBUser: "u", DBPassword: "p",
		DBName: "swaplens", DBPort: "5432", DBSSLMode: "disable",
	}
	assert.Equal(t, "host=db user=u password=p dbname=swaplens port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
