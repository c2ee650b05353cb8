package app

import (
	"podctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath, when set, loads a single file instead of the layered lookup.
	ConfigPath string

	// Debug forces debug logging regardless of the configured level.
	Debug bool

	// Loaded configuration, populated by NewApplication.
	PodctlConfig *config.PodctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, debug bool) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
	}
}
