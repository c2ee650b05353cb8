package config

import (
	"fmt"
	"os"
	"path/filepath"

	"podctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

// ResolveSavePath picks where SaveConfig writes when no explicit path is
// given: the project file if a .podctl directory exists, otherwise the user
// file.
func ResolveSavePath() (string, error) {
	if projectPath, err := getProjectConfigPath(); err == nil {
		if _, err := os.Stat(filepath.Dir(projectPath)); err == nil {
			return projectPath, nil
		}
	}
	userPath, err := getUserConfigPath()
	if err != nil {
		return "", fmt.Errorf("could not determine config path: %w", err)
	}
	return userPath, nil
}

// SaveConfig writes cfg as YAML to path, or to ResolveSavePath() when path
// is empty. It returns the path written.
func SaveConfig(cfg PodctlConfig, path string) (string, error) {
	if path == "" {
		resolved, err := ResolveSavePath()
		if err != nil {
			return "", err
		}
		path = resolved
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write configuration file: %w", err)
	}

	logging.Info("Config", "saved configuration to %s", path)
	return path, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg PodctlConfig) ([]byte, error) {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}
