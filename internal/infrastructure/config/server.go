package config

import "time"

// ServerConfig holds the HTTP API server configuration
type ServerConfig struct {
	// Host to bind the API server
	Host string `mapstructure:"host"`

	// Port for the API server
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// Read timeout for incoming requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// Write timeout for responses. Zero disables the limit; solves may run
	// up to the solver time ceiling.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Idle timeout for keep-alive connections
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// Origins allowed by the CORS middleware ("*" allows any)
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
}
