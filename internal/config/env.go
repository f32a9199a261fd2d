package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DefaultAddr           = ":8080"
	DefaultMetricsAddr    = ":9090"
	DefaultWorkers        = 8
	DefaultResultCapacity = 10000
)

// Env is the process configuration of the scoring service.
type Env struct {
	Addr           string
	MetricsAddr    string
	ConfigPath     string // empty uses Default()
	SigningKey     string
	LogLevel       slog.Level
	Workers        int
	ResultCapacity int
	TokenSymbol    string
	TokenRate      decimal.Decimal
}

// LoadEnv reads SCORER_* variables, loading a .env file first when present.
func LoadEnv() (*Env, error) {
	_ = godotenv.Load()

	env := &Env{
		Addr:        getEnv("SCORER_ADDR", DefaultAddr),
		MetricsAddr: getEnv("SCORER_METRICS_ADDR", DefaultMetricsAddr),
		ConfigPath:  os.Getenv("SCORER_CONFIG"),
		SigningKey:  os.Getenv("SCORER_SIGNING_KEY"),
		TokenSymbol: strings.ToUpper(os.Getenv("SCORER_TOKEN_SYMBOL")),
	}

	var err error
	if env.Workers, err = getEnvInt("SCORER_WORKERS", DefaultWorkers); err != nil {
		return nil, err
	}
	if env.ResultCapacity, err = getEnvInt("SCORER_RESULT_CAPACITY", DefaultResultCapacity); err != nil {
		return nil, err
	}
	if err := env.LogLevel.UnmarshalText([]byte(getEnv("SCORER_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("SCORER_LOG_LEVEL: %w", err)
	}
	if raw := os.Getenv("SCORER_TOKEN_RATE"); raw != "" {
		if env.TokenRate, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("SCORER_TOKEN_RATE: %w", err)
		}
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Env) Validate() error {
	if len(e.SigningKey) < 16 {
		return fmt.Errorf("SCORER_SIGNING_KEY must be at least 16 characters")
	}
	if e.Workers <= 0 {
		return fmt.Errorf("SCORER_WORKERS must be positive")
	}
	if e.TokenRate.IsNegative() {
		return fmt.Errorf("SCORER_TOKEN_RATE cannot be negative")
	}
	return nil
}

// LoadScoring returns the parameter file at ConfigPath, or the built-in set.
func (e *Env) LoadScoring() (*Config, error) {
	if e.ConfigPath == "" {
		return Default(), nil
	}
	return Load(e.ConfigPath)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
