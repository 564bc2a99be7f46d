package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvTimeout, EnvSnapshotDelay, EnvPageSize, EnvArchiveBucket, EnvLogLevel, EnvDashboardAddr} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_MissingBaseURL(t *testing.T) {
	clearEnv(t)

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://localhost:8000/")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.SnapshotDelay)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.Empty(t, cfg.ArchiveBucket)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://api.example.com")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvSnapshotDelay, "0")
	t.Setenv(EnvPageSize, "10")
	t.Setenv(EnvArchiveBucket, "statements")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDashboardAddr, ":9000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.SnapshotDelay)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "statements", cfg.ArchiveBucket)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", EnvTimeout, "soon"},
		{"negative debounce", EnvSnapshotDelay, "-1s"},
		{"zero page size", EnvPageSize, "0"},
		{"non numeric page size", EnvPageSize, "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvBaseURL, "http://localhost:8000")
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINANCE_API_BASE_URL=http://from-dotenv:8000\nDASHBOARD_PAGE_SIZE=50\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv(EnvBaseURL)
		os.Unsetenv(EnvPageSize)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv:8000", cfg.BaseURL)
	assert.Equal(t, 50, cfg.PageSize)
}

func TestLoad_MissingDotEnvIsNotAnError(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://localhost:8000")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
