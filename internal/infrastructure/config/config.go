package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Data      DataConfig      `mapstructure:"data"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.routing")
		v.AddConfigPath("/etc/routing")
	}

	// Enable environment variable reading
	v.SetEnvPrefix("ROUTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare variable names deployments expect to work without the ROUTING_
	// prefix. BindEnv also makes these keys visible to Unmarshal, which
	// AutomaticEnv alone does not.
	_ = v.BindEnv("database.url", "ROUTING_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("data.root", "ROUTING_DATA_ROOT", "DATA_DIR")
	_ = v.BindEnv("providers.mapbox.token", "ROUTING_PROVIDERS_MAPBOX_TOKEN", "MAPBOX_TOKEN")
	_ = v.BindEnv("providers.ors.api_key", "ROUTING_PROVIDERS_ORS_API_KEY", "ORS_API_KEY")
	_ = v.BindEnv("providers.google.api_key", "ROUTING_PROVIDERS_GOOGLE_API_KEY", "GOOGLE_API_KEY")

	// Offline providers are on unless switched off. These defaults live in
	// viper rather than SetDefaults so an explicit `enabled: false` survives.
	v.SetDefault("providers.euclidean.enabled", true)
	v.SetDefault("providers.haversine.enabled", true)
	v.SetDefault("providers.localgraph.enabled", true)
	v.SetDefault("providers.mapbox.enabled", true)
	v.SetDefault("providers.google.enabled", true)
	v.SetDefault("providers.ors.enabled", true)

	// Read config file (optional - don't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use env vars and defaults
	}

	// CORS_ALLOW_ORIGINS is a comma-separated list; viper cannot split it
	// during Unmarshal so it is expanded here.
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		v.Set("server.cors_allow_origins", splitAndTrim(origins))
	}

	// Create config struct and unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	SetDefaults(&cfg)

	// Validate configuration
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Return default configuration
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
