package config

import "time"

// DataConfig holds the benchmark data root configuration
type DataConfig struct {
	// Root directory scanned for benchmark datasets (one subdirectory per
	// dataset). Overridable with the bare DATA_DIR environment variable.
	Root string `mapstructure:"root"`

	// Folder names skipped during dataset discovery
	Excludes []string `mapstructure:"excludes"`

	// How long directory scans stay cached
	IndexTTL time.Duration `mapstructure:"index_ttl"`
}
