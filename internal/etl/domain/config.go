package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PipelineConfig options reconnues par le pipeline
type PipelineConfig struct {
	// BatchSize lignes lues par appel d'extraction
	BatchSize int
	// CommitSize faits écrits par transaction
	CommitSize       int
	MaxRetryAttempts int
	RetryDelay       time.Duration
	// DefaultLookback fenêtre utilisée quand aucun watermark n'existe
	DefaultLookback time.Duration
	DeliveryFee     decimal.Decimal
	TaxRate         decimal.Decimal
	Workers         int
	// Timeout délai global d'un run (0 = aucun)
	Timeout  time.Duration
	Location *time.Location
}

// DefaultPipelineConfig retourne la configuration par défaut
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:        1000,
		CommitSize:       500,
		MaxRetryAttempts: 3,
		RetryDelay:       50 * time.Millisecond,
		DefaultLookback:  24 * time.Hour,
		DeliveryFee:      decimal.NewFromInt(5000),
		TaxRate:          decimal.RequireFromString("0.09"),
		Workers:          4,
		Location:         time.UTC,
	}
}

// Validate vérifie la configuration; retourne une *ConfigurationError
func (c PipelineConfig) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return &ConfigurationError{Field: "batchSize", Reason: "must be positive"}
	case c.CommitSize <= 0:
		return &ConfigurationError{Field: "commitSize", Reason: "must be positive"}
	case c.CommitSize > c.BatchSize:
		return &ConfigurationError{Field: "commitSize", Reason: "must not exceed batchSize"}
	case c.MaxRetryAttempts <= 0:
		return &ConfigurationError{Field: "maxRetryAttempts", Reason: "must be positive"}
	case c.RetryDelay < 0:
		return &ConfigurationError{Field: "retryDelay", Reason: "must not be negative"}
	case c.DefaultLookback < 0:
		return &ConfigurationError{Field: "defaultLookback", Reason: "must not be negative"}
	case c.DeliveryFee.IsNegative():
		return &ConfigurationError{Field: "deliveryFee", Reason: "must not be negative"}
	case c.TaxRate.IsNegative():
		return &ConfigurationError{Field: "taxRate", Reason: "must not be negative"}
	case c.Workers <= 0:
		return &ConfigurationError{Field: "workers", Reason: "must be positive"}
	case c.Timeout < 0:
		return &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	return nil
}

// Loc retourne le fuseau de reporting (UTC par défaut)
func (c PipelineConfig) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
