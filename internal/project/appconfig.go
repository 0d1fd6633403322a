// Package project persists panel projects and the application's own files:
// preferences, backups, the tool and frame inventory, custom G-code
// profiles and panel templates. Everything lives under ~/.panelcut/.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PanelCut/internal/model"
)

// DefaultConfigDir returns the directory holding the application files.
// On all platforms this is ~/.panelcut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".panelcut")
}

// ConfigPath returns the path of the application config file in dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.json")
}

// writeJSON writes v as indented JSON, creating missing parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}

// TouchRecent records path as the most recently used project and saves the
// config.
func TouchRecent(configPath, projectPath string) error {
	config, err := LoadAppConfig(configPath)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(projectPath); err == nil {
		projectPath = abs
	}
	config.AddRecent(projectPath)
	return SaveAppConfig(configPath, config)
}
