// Package config loads environment-based configuration for fitsync.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for fitsync.
type Config struct {
	// Base URL of the fitness API.
	BaseURL string `env:"FITSYNC_BASE_URL"`

	// Session token for the fitness API. Obtaining and refreshing the
	// token is the application layer's job; fitsync only consumes it.
	Token string `env:"FITSYNC_TOKEN"`

	// Owner whose records this process synchronizes.
	OwnerID string `env:"FITSYNC_OWNER_ID"`

	// Path of the local record database. Defaults to
	// ~/.fitsync/records.db when empty.
	StateDB string `env:"FITSYNC_STATE_DB"`

	// Interval between periodic sync runs.
	SyncInterval time.Duration `env:"FITSYNC_SYNC_INTERVAL" envDefault:"5m"`

	// Listen address for the metrics/health endpoint. Empty disables it.
	MetricsAddr string `env:"FITSYNC_METRICS_ADDR" envDefault:":9090"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the session token to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.StateDB == "" {
		path, err := DefaultStateDB()
		if err != nil {
			return nil, err
		}

		cfg.StateDB = path
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Resolve the database path so it stays stable if the process
	// changes working directory after startup.
	absPath, err := filepath.Abs(cfg.StateDB)
	if err != nil {
		return nil, fmt.Errorf("resolving state db to absolute path: %w", err)
	}

	cfg.StateDB = absPath

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("FITSYNC_BASE_URL is required")
	}

	if c.Token == "" {
		return fmt.Errorf("FITSYNC_TOKEN is required")
	}

	if c.OwnerID == "" {
		return fmt.Errorf("FITSYNC_OWNER_ID is required")
	}

	if c.SyncInterval <= 0 {
		return fmt.Errorf("FITSYNC_SYNC_INTERVAL must be positive")
	}

	return nil
}

// DefaultStateDB returns the default record database path:
// ~/.fitsync/records.db
func DefaultStateDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".fitsync", "records.db"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
