package config

import (
	"time"
)

// PodctlConfig is the top-level configuration structure for podctl.
type PodctlConfig struct {
	Hub      HubConfig      `yaml:"hub"`
	API      APIConfig      `yaml:"api"`
	Terminal TerminalConfig `yaml:"terminal"`
	Logs     LogsConfig     `yaml:"logs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HubConfig describes the real-time status/log hub.
type HubConfig struct {
	URL              string        `yaml:"url,omitempty"`             // e.g. "http://localhost:5260/hubs/pod"
	SkipNegotiation  bool          `yaml:"skipNegotiation,omitempty"` // dial the WebSocket directly
	PingInterval     time.Duration `yaml:"pingInterval,omitempty"`    // client keepalive (default 15s)
	ServerTimeout    time.Duration `yaml:"serverTimeout,omitempty"`   // drop the connection after this much silence (default 30s)
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout,omitempty"`
}

// APIConfig describes the request/response pod backend.
type APIConfig struct {
	BaseURL  string        `yaml:"baseURL,omitempty"` // e.g. "http://localhost:5260"
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	RetryMax int           `yaml:"retryMax,omitempty"`
}

// TerminalConfig describes the per-pod terminal hub.
type TerminalConfig struct {
	URL    string `yaml:"url,omitempty"`    // e.g. "http://localhost:5260/terminal"
	Prompt string `yaml:"prompt,omitempty"` // defaults to "$ "
}

// LogsConfig bounds open log views.
type LogsConfig struct {
	MaxLines int `yaml:"maxLines,omitempty"`
}

// LoggingConfig controls podctl's own diagnostics.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // used while a raw terminal session owns stdout
}

// GetDefaultConfig returns the built-in configuration. It matches the
// backend's development defaults.
func GetDefaultConfig() PodctlConfig {
	return PodctlConfig{
		Hub: HubConfig{
			URL:              "http://localhost:5260/hubs/pod",
			PingInterval:     15 * time.Second,
			ServerTimeout:    30 * time.Second,
			HandshakeTimeout: 15 * time.Second,
		},
		API: APIConfig{
			BaseURL:  "http://localhost:5260",
			Timeout:  30 * time.Second,
			RetryMax: 2,
		},
		Terminal: TerminalConfig{
			URL:    "http://localhost:5260/terminal",
			Prompt: "$ ",
		},
		Logs: LogsConfig{
			MaxLines: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "podctl.log",
		},
	}
}
