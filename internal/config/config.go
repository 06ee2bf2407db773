package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/etl/domain"
)

// Config configuration complète du service ETL
type Config struct {
	Source    DatabaseConfig  `yaml:"source"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Pipeline  PipelineFile    `yaml:"pipeline"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// DatabaseConfig paramètres de connexion PostgreSQL
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnectionString construit la chaîne de connexion lib/pq
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// WarehouseConfig entrepôt analytique: "postgres" (DatabaseConfig) ou "sqlite" (DSN)
type WarehouseConfig struct {
	Driver   string         `yaml:"driver"`
	DSN      string         `yaml:"dsn"`
	Database DatabaseConfig `yaml:"database"`
}

// ConnectionString retourne le DSN explicite ou celui construit depuis Database
func (w WarehouseConfig) ConnectionString() string {
	if w.DSN != "" {
		return w.DSN
	}
	return w.Database.ConnectionString()
}

// PipelineFile options du pipeline telles qu'écrites dans le fichier YAML;
// durées au format time.ParseDuration, montants en décimal
type PipelineFile struct {
	BatchSize        int    `yaml:"batch_size"`
	CommitSize       int    `yaml:"commit_size"`
	MaxRetryAttempts int    `yaml:"max_retry_attempts"`
	RetryDelay       string `yaml:"retry_delay"`
	DefaultLookback  string `yaml:"default_lookback"`
	DeliveryFee      string `yaml:"delivery_fee"`
	TaxRate          string `yaml:"tax_rate"`
	Workers          int    `yaml:"workers"`
	Timeout          string `yaml:"timeout"`
	Timezone         string `yaml:"timezone"`
	// Interval période du mode continu ("" = un seul run)
	Interval string `yaml:"interval"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default retourne la configuration par défaut
func Default() Config {
	p := domain.DefaultPipelineConfig()
	return Config{
		Source: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "fooddb",
			User:     "fooduser",
			Password: "foodpass",
			SSLMode:  "disable",
		},
		Warehouse: WarehouseConfig{
			Driver: "postgres",
			Database: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "food_analytics",
				User:     "fooduser",
				Password: "foodpass",
				SSLMode:  "disable",
			},
		},
		Pipeline: PipelineFile{
			BatchSize:        p.BatchSize,
			CommitSize:       p.CommitSize,
			MaxRetryAttempts: p.MaxRetryAttempts,
			RetryDelay:       p.RetryDelay.String(),
			DefaultLookback:  p.DefaultLookback.String(),
			DeliveryFee:      p.DeliveryFee.String(),
			TaxRate:          p.TaxRate.String(),
			Workers:          p.Workers,
			Timeout:          "0s",
			Timezone:         "UTC",
		},
		Log:  LogConfig{Format: "json", Level: "info"},
		HTTP: HTTPConfig{Addr: ":9090"},
	}
}

// Load charge .env (s'il existe), puis le fichier YAML (si path non vide),
// puis applique les variables d'environnement qui priment sur le fichier
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SOURCE_DB_HOST":        &c.Source.Host,
		"SOURCE_DB_USER":        &c.Source.User,
		"SOURCE_DB_PASSWORD":    &c.Source.Password,
		"SOURCE_DB_NAME":        &c.Source.Database,
		"SOURCE_DB_SSLMODE":     &c.Source.SSLMode,
		"WAREHOUSE_DRIVER":      &c.Warehouse.Driver,
		"WAREHOUSE_DSN":         &c.Warehouse.DSN,
		"WAREHOUSE_DB_HOST":     &c.Warehouse.Database.Host,
		"WAREHOUSE_DB_USER":     &c.Warehouse.Database.User,
		"WAREHOUSE_DB_PASSWORD": &c.Warehouse.Database.Password,
		"WAREHOUSE_DB_NAME":     &c.Warehouse.Database.Database,
		"WAREHOUSE_DB_SSLMODE":  &c.Warehouse.Database.SSLMode,
		"ETL_RETRY_DELAY":       &c.Pipeline.RetryDelay,
		"ETL_DEFAULT_LOOKBACK":  &c.Pipeline.DefaultLookback,
		"ETL_DELIVERY_FEE":      &c.Pipeline.DeliveryFee,
		"ETL_TAX_RATE":          &c.Pipeline.TaxRate,
		"ETL_TIMEOUT":           &c.Pipeline.Timeout,
		"ETL_TIMEZONE":          &c.Pipeline.Timezone,
		"ETL_INTERVAL":          &c.Pipeline.Interval,
		"LOG_FORMAT":            &c.Log.Format,
		"LOG_LEVEL":             &c.Log.Level,
		"HTTP_ADDR":             &c.HTTP.Addr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SOURCE_DB_PORT":         &c.Source.Port,
		"WAREHOUSE_DB_PORT":      &c.Warehouse.Database.Port,
		"ETL_BATCH_SIZE":         &c.Pipeline.BatchSize,
		"ETL_COMMIT_SIZE":        &c.Pipeline.CommitSize,
		"ETL_MAX_RETRY_ATTEMPTS": &c.Pipeline.MaxRetryAttempts,
		"ETL_WORKERS":            &c.Pipeline.Workers,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigurationError{Field: key, Reason: "not an integer"}
		}
		*dst = n
	}
	return nil
}

// PipelineConfig convertit et valide les options du pipeline
func (c Config) PipelineConfig() (domain.PipelineConfig, error) {
	p := c.Pipeline
	out := domain.PipelineConfig{
		BatchSize:        p.BatchSize,
		CommitSize:       p.CommitSize,
		MaxRetryAttempts: p.MaxRetryAttempts,
		Workers:          p.Workers,
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"retryDelay", p.RetryDelay, &out.RetryDelay},
		{"defaultLookback", p.DefaultLookback, &out.DefaultLookback},
		{"timeout", p.Timeout, &out.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return domain.PipelineConfig{}, &domain.ConfigurationError{Field: d.field, Reason: err.Error()}
		}
		*d.dst = v
	}

	var err error
	if out.DeliveryFee, err = parseDecimal(p.DeliveryFee); err != nil {
		return domain.PipelineConfig{}, &domain.ConfigurationError{Field: "deliveryFee", Reason: err.Error()}
	}
	if out.TaxRate, err = parseDecimal(p.TaxRate); err != nil {
		return domain.PipelineConfig{}, &domain.ConfigurationError{Field: "taxRate", Reason: err.Error()}
	}

	out.Location = time.UTC
	if p.Timezone != "" {
		loc, err := time.LoadLocation(p.Timezone)
		if err != nil {
			return domain.PipelineConfig{}, &domain.ConfigurationError{Field: "timezone", Reason: err.Error()}
		}
		out.Location = loc
	}

	if err := out.Validate(); err != nil {
		return domain.PipelineConfig{}, err
	}
	return out, nil
}

// RunInterval période du mode continu; 0 = un seul run
func (c Config) RunInterval() (time.Duration, error) {
	if c.Pipeline.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Pipeline.Interval)
	if err != nil || d < 0 {
		return 0, &domain.ConfigurationError{Field: "interval", Reason: "must be a non-negative duration"}
	}
	return d, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
