package app

import (
	"fmt"
	"io"

	"podctl/internal/config"
	"podctl/pkg/logging"
)

// Application is the main application structure that bootstraps podctl
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, sets up CLI logging on logOut and
// wires the real-time core.
func NewApplication(cfg *Config, logOut io.Writer) (*Application, error) {
	if err := LoadConfig(cfg); err != nil {
		return nil, err
	}

	logging.InitForCLI(cfg.LogLevel(), logOut)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// LoadConfig fills cfg.PodctlConfig from cfg.ConfigPath or the layered
// lookup.
func LoadConfig(cfg *Config) error {
	var (
		podctlCfg config.PodctlConfig
		err       error
	)
	if cfg.ConfigPath != "" {
		podctlCfg, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load podctl configuration from path %s: %w", cfg.ConfigPath, err)
		}
	} else {
		podctlCfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load podctl configuration: %w", err)
		}
	}
	cfg.PodctlConfig = &podctlCfg
	return nil
}

// LogLevel is the effective log level: debug when forced, else the
// configured one.
func (c *Config) LogLevel() logging.LogLevel {
	if c.Debug {
		return logging.LevelDebug
	}
	if c.PodctlConfig == nil {
		return logging.LevelInfo
	}
	return logging.ParseLevel(c.PodctlConfig.Logging.Level)
}

// Config returns the application configuration.
func (a *Application) Config() *Config { return a.config }

// Services returns the wired core.
func (a *Application) Services() *Services { return a.services }
