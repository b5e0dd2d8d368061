package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// appDirName is the directory used under config roots
const appDirName = "ai-cli"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// DefaultModel is the alias used when no -m flag is given
	DefaultModel string `yaml:"default_model,omitempty"`

	// SystemPrompt is the base prompt appended to the generated context
	SystemPrompt string `yaml:"system_prompt,omitempty"`

	// Models are user-defined aliases on top of the built-in ones
	Models []CustomModel `yaml:"models,omitempty"`

	// Defaults hold flag defaults
	Defaults *DefaultsConfig `yaml:"defaults,omitempty"`
}

// CustomModel is a user-defined model alias
type CustomModel struct {
	Alias        string `yaml:"alias"`
	ModelID      string `yaml:"model_id"`
	Description  string `yaml:"description,omitempty"`
	TokensPerSec int    `yaml:"tokens_per_sec,omitempty"`
}

// DefaultsConfig holds default flag values
type DefaultsConfig struct {
	Render   bool `yaml:"render,omitempty"`
	NoStream bool `yaml:"no_stream,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+appDirName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, appDirName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", appDirName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from a file
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveConfigFile writes the configuration to the user config directory,
// creating it if needed.
func SaveConfigFile(fc *FileConfig) error {
	path, err := userConfigFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// userConfigFilePath is where SaveConfigFile writes, independent of which
// path the config was loaded from.
func userConfigFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, appDirName, ConfigFileName), nil
}
