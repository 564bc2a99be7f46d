// Package config loads dashboard settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingBaseURL is returned when FINANCE_API_BASE_URL is not set.
// There is no sensible default, so callers should treat it as fatal.
var ErrMissingBaseURL = errors.New("FINANCE_API_BASE_URL is required")

const (
	EnvBaseURL         = "FINANCE_API_BASE_URL"
	EnvTimeout         = "FINANCE_API_TIMEOUT"
	EnvSnapshotDelay   = "SNAPSHOT_DEBOUNCE"
	EnvPageSize        = "DASHBOARD_PAGE_SIZE"
	EnvArchiveBucket   = "ARCHIVE_BUCKET"
	EnvLogLevel        = "LOG_LEVEL"
	EnvDashboardAddr   = "DASHBOARD_ADDR"
	defaultTimeout     = 30 * time.Second
	defaultSnapshotLag = time.Second
	defaultPageSize    = 25
	defaultAddr        = ":8081"
)

// Config holds runtime settings shared by the dashboard server and CLI.
type Config struct {
	BaseURL       string        // backend base URL, without the /api/v1 prefix
	Timeout       time.Duration // per-request HTTP timeout
	SnapshotDelay time.Duration // debounce before a snapshot request; 0 disables snapshots
	PageSize      int           // default transaction table page size
	ArchiveBucket string        // optional GCS bucket for raw statement archival
	LogLevel      string
	Addr          string // dashboard listen address
}

// Load reads .env files (if present) and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		BaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv(EnvBaseURL)), "/"),
		Timeout:       defaultTimeout,
		SnapshotDelay: defaultSnapshotLag,
		PageSize:      defaultPageSize,
		ArchiveBucket: strings.TrimSpace(os.Getenv(EnvArchiveBucket)),
		LogLevel:      "info",
		Addr:          defaultAddr,
	}

	if cfg.BaseURL == "" {
		return Config{}, ErrMissingBaseURL
	}

	var err error
	if cfg.Timeout, err = durationEnv(EnvTimeout, cfg.Timeout); err != nil {
		return Config{}, err
	}
	if cfg.SnapshotDelay, err = durationEnv(EnvSnapshotDelay, cfg.SnapshotDelay); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive integer, got %q", EnvPageSize, v)
		}
		cfg.PageSize = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDashboardAddr)); v != "" {
		cfg.Addr = v
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}
