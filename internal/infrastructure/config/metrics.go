package config

// MetricsConfig holds Prometheus metrics exposure configuration
type MetricsConfig struct {
	// Enabled controls whether collectors record and the endpoint serves
	Enabled bool `mapstructure:"enabled"`

	// Host to bind the metrics HTTP listener (default: localhost)
	Host string `mapstructure:"host"`

	// Port for the metrics HTTP listener
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Path for the metrics endpoint (default: /metrics)
	Path string `mapstructure:"path"`
}
