// Package config reads process configuration from the environment,
// with an optional .env file loaded at startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr    string
	DatabaseURL string

	// MigrationsDir is a file:// URL; empty disables migrations.
	MigrationsDir string

	// KafkaBrokers empty disables event publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// QuoteAPIURL empty selects the static quote provider.
	QuoteAPIURL   string
	QuoteAPIToken string

	StartingCash decimal.Decimal
	DepositMin   decimal.Decimal
	DepositMax   decimal.Decimal

	LogLevel  string
	LogFormat string
}

// Read loads .env when present and assembles the configuration from
// the environment.
func Read() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "ledger_events"),
		QuoteAPIURL:   os.Getenv("QUOTE_API_URL"),
		QuoteAPIToken: os.Getenv("QUOTE_API_TOKEN"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if config.StartingCash, err = getDecimal("STARTING_CASH", "10000"); err != nil {
		return nil, err
	}
	if config.DepositMin, err = getDecimal("DEPOSIT_MIN", "100"); err != nil {
		return nil, err
	}
	if config.DepositMax, err = getDecimal("DEPOSIT_MAX", "50000"); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse %s: %w", key, err)
	}
	return value, nil
}
