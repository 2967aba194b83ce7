// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Ledger backends.
const (
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds everything the server and the CLI need.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	LedgerBackend string        `env:"LEDGER_BACKEND" envDefault:"csv"`
	LedgerPath    string        `env:"LEDGER_PATH" envDefault:"poker_ledger.csv"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"poker_ledger.db"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	RedisURL      string        `env:"REDIS_URL"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	ExchangeRatio   decimal.Decimal `env:"EXCHANGE_RATIO" envDefault:"40"`
	TotalFee        decimal.Decimal `env:"TOTAL_FEE" envDefault:"0"`
	DriftTolerance  decimal.Decimal `env:"DRIFT_TOLERANCE" envDefault:"0.1"`
	RejectTolerance decimal.Decimal `env:"REJECT_TOLERANCE" envDefault:"1000"`

	DateLayout string        `env:"DATE_LAYOUT" envDefault:"2006-01-02 15:04"`
	PreviewTTL time.Duration `env:"PREVIEW_TTL" envDefault:"15m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	c.LedgerBackend = strings.ToLower(strings.TrimSpace(c.LedgerBackend))
	switch c.LedgerBackend {
	case BackendMemory, BackendCSV, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	if !c.ExchangeRatio.IsPositive() {
		return errors.New("config: EXCHANGE_RATIO must be positive")
	}
	if c.TotalFee.IsNegative() {
		return errors.New("config: TOTAL_FEE must not be negative")
	}
	if c.DriftTolerance.IsNegative() || c.RejectTolerance.LessThan(c.DriftTolerance) {
		return errors.New("config: need 0 <= DRIFT_TOLERANCE <= REJECT_TOLERANCE")
	}
	return nil
}
