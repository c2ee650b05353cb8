package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, filename string, content PodctlConfig) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	tempFilePath := filepath.Join(dir, filename)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tempFilePath, data, 0644))
	return tempFilePath
}

func withConfigPaths(t *testing.T, userPath, projectPath string) {
	t.Helper()
	originalGetUserConfigPath := getUserConfigPath
	originalGetProjectConfigPath := getProjectConfigPath
	t.Cleanup(func() {
		getUserConfigPath = originalGetUserConfigPath
		getProjectConfigPath = originalGetProjectConfigPath
	})
	getUserConfigPath = func() (string, error) { return userPath, nil }
	getProjectConfigPath = func() (string, error) { return projectPath, nil }
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	tempDir := t.TempDir()
	withConfigPaths(t,
		filepath.Join(tempDir, "non-existent-user-config.yaml"),
		filepath.Join(tempDir, "non-existent-project-config.yaml"))

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), loadedConfig)
}

func TestLoadConfig_UserOverride(t *testing.T) {
	tempDir := t.TempDir()
	userDir := filepath.Join(tempDir, userConfigDir)
	withConfigPaths(t,
		filepath.Join(userDir, configFileName),
		filepath.Join(tempDir, "missing", configFileName))

	createTempConfigFile(t, userDir, configFileName, PodctlConfig{
		Hub:     HubConfig{URL: "https://pods.example.com/hubs/pod", SkipNegotiation: true},
		Logging: LoggingConfig{Level: "debug"},
	})

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://pods.example.com/hubs/pod", loadedConfig.Hub.URL)
	assert.True(t, loadedConfig.Hub.SkipNegotiation)
	assert.Equal(t, "debug", loadedConfig.Logging.Level)
	// untouched sections keep their defaults
	assert.Equal(t, 15*time.Second, loadedConfig.Hub.PingInterval)
	assert.Equal(t, "http://localhost:5260", loadedConfig.API.BaseURL)
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	tempDir := t.TempDir()
	userDir := filepath.Join(tempDir, "home", userConfigDir)
	projectDir := filepath.Join(tempDir, "work", projectConfigDir)
	withConfigPaths(t, filepath.Join(userDir, configFileName), filepath.Join(projectDir, configFileName))

	createTempConfigFile(t, userDir, configFileName, PodctlConfig{
		API:  APIConfig{BaseURL: "http://user:5260", RetryMax: 5},
		Logs: LogsConfig{MaxLines: 100},
	})
	createTempConfigFile(t, projectDir, configFileName, PodctlConfig{
		API: APIConfig{BaseURL: "http://project:5260"},
	})

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://project:5260", loadedConfig.API.BaseURL)
	assert.Equal(t, 5, loadedConfig.API.RetryMax)
	assert.Equal(t, 100, loadedConfig.Logs.MaxLines)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	userPath := filepath.Join(tempDir, configFileName)
	withConfigPaths(t, userPath, filepath.Join(tempDir, "missing.yaml"))

	require.NoError(t, os.WriteFile(userPath, []byte("hub: [not-a-map"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error loading user config")
}

func TestLoadConfigFromPath(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
terminal:
  url: "http://pods.internal/terminal"
  prompt: "# "
hub:
  pingInterval: 5s
`), 0644))

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://pods.internal/terminal", cfg.Terminal.URL)
	assert.Equal(t, "# ", cfg.Terminal.Prompt)
	assert.Equal(t, 5*time.Second, cfg.Hub.PingInterval)
	assert.Equal(t, 30*time.Second, cfg.Hub.ServerTimeout)

	_, err = LoadConfigFromPath(filepath.Join(tempDir, "nope.yaml"))
	assert.Error(t, err)
}
