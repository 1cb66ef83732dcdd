package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	ImageRoot string `toml:"image_root"`
	Paper     string `toml:"paper"`
	Bleed     string `toml:"bleed"`
	Cut       string `toml:"cut"`
	Parallel  int    `toml:"parallel"`
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "proxyprint", "config.toml")
}

// LoadConfig loads the config file, falling back to defaults when it does
// not exist. The PROXYPRINT_IMAGE_ROOT environment variable overrides the
// configured image root.
func LoadConfig() (*Config, error) {
	config := &Config{
		Paper: "a4",
		Bleed: "none",
		Cut:   "lines",
	}

	configPath := GetConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %v", err)
		}
	}

	if root := os.Getenv("PROXYPRINT_IMAGE_ROOT"); root != "" {
		config.ImageRoot = root
	}

	return config, nil
}

// Save writes the config back to the config file
func (c *Config) Save() error {
	configPath := GetConfigFilePath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}

	return nil
}
