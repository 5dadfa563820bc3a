// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Server
	Debug bool
	Port  string

	// Directory result/schedule artifacts are dropped into by the fetcher.
	DataDir string

	// Sync cadence
	StatusInterval   time.Duration
	ResultsInterval  time.Duration
	CalendarInterval time.Duration

	// HistoricalSync holds an optional "START-END" year range synced once at
	// startup (and by cmd/backfill), e.g. "2012-2024".
	HistoricalSync string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "pitlane")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "pitlane")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STATUS_INTERVAL", "5m")
	v.SetDefault("RESULTS_INTERVAL", "1h")
	v.SetDefault("CALENDAR_INTERVAL", "24h")

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBUser:           v.GetString("DB_USER"),
		DBPass:           v.GetString("DB_PASS"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		Debug:            v.GetBool("DEBUG"),
		Port:             v.GetString("PORT"),
		DataDir:          v.GetString("DATA_DIR"),
		StatusInterval:   v.GetDuration("STATUS_INTERVAL"),
		ResultsInterval:  v.GetDuration("RESULTS_INTERVAL"),
		CalendarInterval: v.GetDuration("CALENDAR_INTERVAL"),
		HistoricalSync:   v.GetString("HISTORICAL_SYNC"),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// HistoricalRange parses HistoricalSync ("2012-2024") into a year span.
// ok is false when no range is configured.
func (c *Config) HistoricalRange() (from, to int, ok bool, err error) {
	if c.HistoricalSync == "" {
		return 0, 0, false, nil
	}
	if _, err := fmt.Sscanf(c.HistoricalSync, "%d-%d", &from, &to); err != nil {
		return 0, 0, false, fmt.Errorf("config: bad HISTORICAL_SYNC %q: %w", c.HistoricalSync, err)
	}
	if from > to {
		return 0, 0, false, fmt.Errorf("config: HISTORICAL_SYNC %q starts after it ends", c.HistoricalSync)
	}
	return from, to, true, nil
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}
