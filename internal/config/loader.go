package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/podctl"
	projectConfigDir = ".podctl"
	configFileName   = "config.yaml"
)

// LoadConfig layers the default, user and project configuration files.
func LoadConfig() (PodctlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return PodctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return PodctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	return config, nil
}

// LoadConfigFromPath loads a single file on top of the defaults, skipping the
// user and project layers.
func LoadConfigFromPath(path string) (PodctlConfig, error) {
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return PodctlConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(GetDefaultConfig(), overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadConfigFromFile(filePath string) (PodctlConfig, error) {
	var config PodctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return PodctlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return PodctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges non-zero fields of overlay onto base.
func mergeConfigs(base, overlay PodctlConfig) PodctlConfig {
	merged := base

	if overlay.Hub.URL != "" {
		merged.Hub.URL = overlay.Hub.URL
	}
	if overlay.Hub.SkipNegotiation {
		merged.Hub.SkipNegotiation = true
	}
	if overlay.Hub.PingInterval > 0 {
		merged.Hub.PingInterval = overlay.Hub.PingInterval
	}
	if overlay.Hub.ServerTimeout > 0 {
		merged.Hub.ServerTimeout = overlay.Hub.ServerTimeout
	}
	if overlay.Hub.HandshakeTimeout > 0 {
		merged.Hub.HandshakeTimeout = overlay.Hub.HandshakeTimeout
	}

	if overlay.API.BaseURL != "" {
		merged.API.BaseURL = overlay.API.BaseURL
	}
	if overlay.API.Timeout > 0 {
		merged.API.Timeout = overlay.API.Timeout
	}
	if overlay.API.RetryMax > 0 {
		merged.API.RetryMax = overlay.API.RetryMax
	}

	if overlay.Terminal.URL != "" {
		merged.Terminal.URL = overlay.Terminal.URL
	}
	if overlay.Terminal.Prompt != "" {
		merged.Terminal.Prompt = overlay.Terminal.Prompt
	}

	if overlay.Logs.MaxLines > 0 {
		merged.Logs.MaxLines = overlay.Logs.MaxLines
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.File != "" {
		merged.Logging.File = overlay.Logging.File
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
