package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineConfigIsValid(t *testing.T) {
	cfg := DefaultPipelineConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 500, cfg.CommitSize)
	assert.Equal(t, 3, cfg.MaxRetryAttempts)
	assert.Equal(t, 24*time.Hour, cfg.DefaultLookback)
	assert.True(t, cfg.DeliveryFee.Equal(decimal.NewFromInt(5000)))
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.09")))
}

func TestPipelineConfigValidate(t *testing.T) {
	cases := []struct {
		field string
		mut   func(*PipelineConfig)
	}{
		{"batchSize", func(c *PipelineConfig) { c.BatchSize = 0 }},
		{"commitSize", func(c *PipelineConfig) { c.CommitSize = -1 }},
		{"commitSize", func(c *PipelineConfig) { c.CommitSize = c.BatchSize + 1 }},
		{"maxRetryAttempts", func(c *PipelineConfig) { c.MaxRetryAttempts = 0 }},
		{"retryDelay", func(c *PipelineConfig) { c.RetryDelay = -time.Second }},
		{"defaultLookback", func(c *PipelineConfig) { c.DefaultLookback = -time.Hour }},
		{"deliveryFee", func(c *PipelineConfig) { c.DeliveryFee = decimal.NewFromInt(-1) }},
		{"taxRate", func(c *PipelineConfig) { c.TaxRate = decimal.RequireFromString("-0.01") }},
		{"workers", func(c *PipelineConfig) { c.Workers = 0 }},
		{"timeout", func(c *PipelineConfig) { c.Timeout = -time.Second }},
	}

	for _, tc := range cases {
		cfg := DefaultPipelineConfig()
		tc.mut(&cfg)

		err := cfg.Validate()

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "field %s: got %v", tc.field, err)
		assert.Equal(t, tc.field, cfgErr.Field)
	}
}

func TestLocDefaultsToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, PipelineConfig{}.Loc())
}
