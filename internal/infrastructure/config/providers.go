package config

import "time"

// ProvidersConfig holds per-adapter matrix provider configuration. Offline
// providers carry only an enable flag; online providers additionally need a
// credential and are skipped at registration when it is absent.
type ProvidersConfig struct {
	Euclidean  EuclideanConfig    `mapstructure:"euclidean"`
	Haversine  HaversineConfig    `mapstructure:"haversine"`
	LocalGraph LocalGraphConfig   `mapstructure:"localgraph"`
	Mapbox     MapboxConfig       `mapstructure:"mapbox"`
	Google     GoogleConfig       `mapstructure:"google"`
	ORS        ORSConfig          `mapstructure:"ors"`
	HTTP       ProviderHTTPConfig `mapstructure:"http"`
}

// EuclideanConfig configures the planar straight-line provider
type EuclideanConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// HaversineConfig configures the great-circle provider
type HaversineConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LocalGraphConfig configures the offline road-graph provider
type LocalGraphConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Graph radius in meters around the centroid of the requested points
	BufferMeters float64 `mapstructure:"buffer_meters" validate:"omitempty,min=100"`

	// Overpass API endpoint the graph builder downloads road data from
	OverpassURL string `mapstructure:"overpass_url" validate:"omitempty,url"`

	// Number of built graphs kept in the process-wide LRU
	GraphCacheSize int `mapstructure:"graph_cache_size" validate:"min=0"`
}

// MapboxConfig configures the Mapbox Directions Matrix provider
type MapboxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// GoogleConfig configures the Google Distance Matrix provider
type GoogleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// ORSConfig configures the openrouteservice matrix provider
type ORSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// ProviderHTTPConfig tunes the outbound HTTP client shared by the online
// providers
type ProviderHTTPConfig struct {
	// Request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// Maximum requests per second against each upstream
	RequestsPerSec float64 `mapstructure:"requests_per_sec" validate:"omitempty,min=0"`

	// Maximum number of retry attempts
	MaxRetries int `mapstructure:"max_retries" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
