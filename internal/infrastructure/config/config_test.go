package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	// Act
	cfg, err := config.LoadConfig(writeConfigFile(t, ""))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8095, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "routing.db", cfg.Database.Path)
	assert.Equal(t, "./data", cfg.Data.Root)
	assert.Equal(t, 60*time.Second, cfg.Cache.MatrixTTL)
	assert.Equal(t, 120*time.Second, cfg.Cache.PairTTL)
	assert.Equal(t, 90*time.Second, cfg.Cache.ProviderTTL)
	assert.True(t, cfg.Providers.Euclidean.Enabled)
	assert.True(t, cfg.Providers.Haversine.Enabled)
	assert.True(t, cfg.Providers.LocalGraph.Enabled)
	assert.InDelta(t, 10000, cfg.Providers.LocalGraph.BufferMeters, 0)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Daemon.ShutdownTimeout)
}

func TestLoadConfig_ReadsConfigFile(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, `
server:
  port: 9191
  read_timeout: 5s
  cors_allow_origins:
    - https://app.example.com
providers:
  haversine:
    enabled: false
logging:
  level: debug
`)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSAllowOrigins)
	assert.False(t, cfg.Providers.Haversine.Enabled)
	assert.True(t, cfg.Providers.Euclidean.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_BindsBareEnvironmentVariables(t *testing.T) {
	// Arrange
	t.Setenv("DATA_DIR", "/srv/benchmarks")
	t.Setenv("MAPBOX_TOKEN", "pk.test-token")
	t.Setenv("ORS_API_KEY", "ors-key")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	// Act
	cfg, err := config.LoadConfig(writeConfigFile(t, ""))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/srv/benchmarks", cfg.Data.Root)
	assert.Equal(t, "pk.test-token", cfg.Providers.Mapbox.Token)
	assert.Equal(t, "ors-key", cfg.Providers.ORS.APIKey)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowOrigins)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, `
logging:
  level: noisy
`)

	// Act
	_, err := config.LoadConfig(path)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestMustLoadConfig_PanicsOnMissingExplicitFile(t *testing.T) {
	// Act / Assert
	require.Panics(t, func() {
		config.MustLoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
