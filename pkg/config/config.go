// Package config loads the on-disk proxy defaults: the listening socket
// name, an upstream compositor override, default allow/deny filter
// strings, and the log level, so a long-running session doesn't need the
// full CLI flag set repeated on every launch.
//
// Grounded on the teacher's pkg/config: gopkg.in/yaml.v3, an
// os.UserConfigDir()-rooted path, and environment-variable overrides
// applied after the file is loaded.
package config

import (
	"os"
	"path/filepath"

	"wlproxy/pkg/errors"

	"gopkg.in/yaml.v3"
)

const DefaultListenName = "wayland-proxy-0"

// Config holds every setting wl-format-filter can take from a config file
// instead of the command line.
type Config struct {
	ListenName string   `yaml:"listen_name"`
	Upstream   string   `yaml:"upstream,omitempty"`
	Allow      []string `yaml:"allow,omitempty"`
	Deny       []string `yaml:"deny,omitempty"`
	LogLevel   string   `yaml:"log_level"`
}

// Load reads the config file at GetConfigPath, if present, and applies
// environment variable overrides. A missing file is not an error: every
// field simply keeps its default/env value.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath)
}

// LoadFrom reads the config file at an explicit path (the CLI's --config
// flag), applying the same environment overrides as Load.
func LoadFrom(path string) (*Config, error) {
	return loadFromPath(path)
}

// GetConfigPath returns the default path to the config file.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wl-format-filter", "config.yaml"), nil
}

// Save writes cfg to path, creating its parent directory if necessary.
func Save(cfg *Config, path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

func loadFromPath(path string) (*Config, error) {
	cfg := &Config{
		ListenName: DefaultListenName,
		LogLevel:   "info",
	}

	if err := loadConfigFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

// loadConfigFile reads and parses the config file from the given path. A
// missing file is not an error — the caller falls back to defaults/env.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the
// config. WLPROXY_LISTEN_NAME and WLPROXY_LOG_LEVEL replace the file's
// values whenever set; WAYLAND_DISPLAY only fills Upstream when the file
// left it empty.
func applyEnvironmentOverrides(cfg *Config) {
	if env := os.Getenv("WLPROXY_LISTEN_NAME"); env != "" {
		cfg.ListenName = env
	}
	if env := os.Getenv("WAYLAND_DISPLAY"); env != "" && cfg.Upstream == "" {
		cfg.Upstream = env
	}
	if env := os.Getenv("WLPROXY_LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
}
