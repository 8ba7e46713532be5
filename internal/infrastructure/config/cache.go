package config

import "time"

// CacheConfig holds the TTL cache configuration. Each cache is owned by the
// application container; zero values fall back to the defaults below.
type CacheConfig struct {
	// How long computed matrices stay valid, keyed by request fingerprint
	MatrixTTL time.Duration `mapstructure:"matrix_ttl"`

	// How long instance/solution pair lookups stay valid
	PairTTL time.Duration `mapstructure:"pair_ttl"`

	// How long raw provider responses on the convenience matrix route stay valid
	ProviderTTL time.Duration `mapstructure:"provider_ttl"`

	// Maximum entries per cache before oldest-expiry eviction
	MaxEntries int `mapstructure:"max_entries" validate:"min=0"`
}
