package config

import "time"

// SetDefaults sets default values for all configuration fields. Boolean
// enable flags keep their loaded value; their defaults live in LoadConfig
// because a zero bool cannot be told apart from an explicit false here.
func SetDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8095
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if len(cfg.Server.CORSAllowOrigins) == 0 {
		cfg.Server.CORSAllowOrigins = []string{"*"}
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "routing.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "routing"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "routing"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Data defaults
	if cfg.Data.Root == "" {
		cfg.Data.Root = "./data"
	}
	if cfg.Data.IndexTTL == 0 {
		cfg.Data.IndexTTL = 5 * time.Minute
	}

	// Provider defaults
	if cfg.Providers.LocalGraph.BufferMeters == 0 {
		cfg.Providers.LocalGraph.BufferMeters = 10000
	}
	if cfg.Providers.LocalGraph.OverpassURL == "" {
		cfg.Providers.LocalGraph.OverpassURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Providers.LocalGraph.GraphCacheSize == 0 {
		cfg.Providers.LocalGraph.GraphCacheSize = 16
	}
	if cfg.Providers.HTTP.Timeout == 0 {
		cfg.Providers.HTTP.Timeout = 30 * time.Second
	}
	if cfg.Providers.HTTP.RequestsPerSec == 0 {
		cfg.Providers.HTTP.RequestsPerSec = 4
	}
	if cfg.Providers.HTTP.MaxRetries == 0 {
		cfg.Providers.HTTP.MaxRetries = 3
	}
	if cfg.Providers.HTTP.BackoffBase == 0 {
		cfg.Providers.HTTP.BackoffBase = 500 * time.Millisecond
	}

	// Cache defaults
	if cfg.Cache.MatrixTTL == 0 {
		cfg.Cache.MatrixTTL = 60 * time.Second
	}
	if cfg.Cache.PairTTL == 0 {
		cfg.Cache.PairTTL = 120 * time.Second
	}
	if cfg.Cache.ProviderTTL == 0 {
		cfg.Cache.ProviderTTL = 90 * time.Second
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1000
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/routing-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9095
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
