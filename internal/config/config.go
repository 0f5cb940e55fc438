// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/oracle"
)

// Config holds every setting the service needs. Built once at startup and
// passed down; nothing reads the environment after Load returns.
type Config struct {
	SpreadsheetID string
	GCSBucket     string
	OracleModel   string
	Timezone      string
	Port          string
	RatePerMinute int
}

// Load reads the environment, after best-effort loading a .env file from the
// working directory. Missing .env is normal outside local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		SpreadsheetID: os.Getenv("SPREADSHEET_ID"),
		GCSBucket:     os.Getenv("GCS_BUCKET"),
		OracleModel:   envOr("ORACLE_MODEL", oracle.DefaultModel),
		Timezone:      envOr("LEDGER_TIMEZONE", dates.DefaultTimezone),
		Port:          envOr("PORT", "8080"),
		RatePerMinute: 20,
	}

	if v := os.Getenv("RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid RATE_PER_MINUTE %q", v)
		}
		cfg.RatePerMinute = n
	}

	if cfg.SpreadsheetID == "" {
		return Config{}, fmt.Errorf("config: SPREADSHEET_ID is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
