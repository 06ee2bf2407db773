package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
)

func TestDefaultPipelineConfigMatchesDomainDefaults(t *testing.T) {
	got, err := Default().PipelineConfig()
	require.NoError(t, err)

	want := domain.DefaultPipelineConfig()
	assert.Equal(t, want.BatchSize, got.BatchSize)
	assert.Equal(t, want.CommitSize, got.CommitSize)
	assert.Equal(t, want.MaxRetryAttempts, got.MaxRetryAttempts)
	assert.Equal(t, want.RetryDelay, got.RetryDelay)
	assert.Equal(t, want.DefaultLookback, got.DefaultLookback)
	assert.True(t, want.DeliveryFee.Equal(got.DeliveryFee))
	assert.True(t, want.TaxRate.Equal(got.TaxRate))
	assert.Equal(t, time.Duration(0), got.Timeout)
	assert.Equal(t, time.UTC, got.Loc())
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "etl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  host: db.internal
  port: 6432
warehouse:
  driver: sqlite
  dsn: "file:analytics.db"
pipeline:
  batch_size: 200
  commit_size: 100
  tax_rate: "0.1"
  retry_delay: 2s
  interval: 5m
`), 0o600))

	t.Setenv("ETL_COMMIT_SIZE", "50")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Source.Host)
	assert.Equal(t, 6432, cfg.Source.Port)
	assert.Equal(t, "sqlite", cfg.Warehouse.Driver)
	assert.Equal(t, "file:analytics.db", cfg.Warehouse.ConnectionString())
	assert.Equal(t, "console", cfg.Log.Format)

	p, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, 200, p.BatchSize)
	assert.Equal(t, 50, p.CommitSize)
	assert.Equal(t, 2*time.Second, p.RetryDelay)
	assert.True(t, p.TaxRate.Equal(decimal.RequireFromString("0.1")))

	interval, err := cfg.RunInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, interval)
}

func TestLoadRejectsNonIntegerEnv(t *testing.T) {
	t.Setenv("ETL_BATCH_SIZE", "lots")

	_, err := Load("")

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ETL_BATCH_SIZE", cfgErr.Field)
}

func TestPipelineConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"commit larger than batch", func(c *Config) { c.Pipeline.BatchSize = 10; c.Pipeline.CommitSize = 20 }, "commitSize"},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, "workers"},
		{"bad duration", func(c *Config) { c.Pipeline.RetryDelay = "soon" }, "retryDelay"},
		{"bad decimal", func(c *Config) { c.Pipeline.TaxRate = "nine percent" }, "taxRate"},
		{"negative fee", func(c *Config) { c.Pipeline.DeliveryFee = "-1" }, "deliveryFee"},
		{"unknown timezone", func(c *Config) { c.Pipeline.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)

			_, err := cfg.PipelineConfig()

			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestWarehouseConnectionStringFromParts(t *testing.T) {
	w := Default().Warehouse
	assert.Contains(t, w.ConnectionString(), "dbname=food_analytics")
}
