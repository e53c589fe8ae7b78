// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/sigil/internal/errors"
)

const (
	defaultConfigDir  = ".sigil"
	defaultConfigFile = "config.yaml"
	configVersion     = "1"
)

var validate = validator.New()

// ScanConfig bounds a single scan, matching the Paths & Config contract in
// spec.md 4.1: concurrency, per-file and per-scan caps, wall-clock budget,
// snippet length, and the default verdict policy.
type ScanConfig struct {
	Workers          int    `yaml:"workers" validate:"gte=1,lte=256"`
	MaxFileBytes     int64  `yaml:"max_file_bytes" validate:"gte=0"`
	MaxFiles         int    `yaml:"max_files" validate:"gte=0"`
	WallClockSeconds int    `yaml:"wall_clock_seconds" validate:"gte=0"`
	SnippetCap       int    `yaml:"snippet_cap" validate:"gte=0"`
	FailOnFindings   bool   `yaml:"fail_on_findings"`
	Threshold        string `yaml:"threshold" validate:"omitempty,oneof=Clean LowRisk MediumRisk HighRisk Critical"`
}

// SignaturesConfig points at a local override set merged over the builtin
// catalog, satisfying spec.md 4.2's merge(cloud_set) contract offline.
type SignaturesConfig struct {
	OverridesPath string `yaml:"overrides_path,omitempty"`
}

// MetricsConfig enables the optional Prometheus scrape endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config represents the .sigil/config.yaml configuration file.
type Config struct {
	Version    string           `yaml:"version" validate:"required"`
	Root       string           `yaml:"root,omitempty"`
	Scan       ScanConfig       `yaml:"scan"`
	Signatures SignaturesConfig `yaml:"signatures,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
}

// DefaultConfig returns a config with sensible defaults for local use.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Scan: ScanConfig{
			Workers:          8,
			MaxFileBytes:     2 << 20, // 2 MiB
			MaxFiles:         20000,
			WallClockSeconds: 120,
			SnippetCap:       200,
			FailOnFindings:   false,
			Threshold:        "",
		},
	}
}

// LoadConfig loads configuration from configPath, or discovers it by
// walking parent directories for .sigil/config.yaml.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("SIGIL_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from user flag, env, or discovery
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or run 'sigil init --force' to recreate", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version %q is not supported (expected %q)", cfg.Version, configVersion),
			"Run 'sigil init --force' to regenerate the configuration file",
			nil,
		)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration values",
			err.Error(),
			fmt.Sprintf("Edit %s to fix the invalid fields", configPath),
			err,
		)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// SaveConfig writes cfg to configPath as YAML.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug; please report it",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and available disk space",
			err,
		)
	}
	return nil
}

// ConfigPath returns <dir>/.sigil/config.yaml.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// ConfigDir returns <dir>/.sigil.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

// findConfigFile walks from the current directory up to the filesystem
// root looking for .sigil/config.yaml.
func findConfigFile() (string, error) {
	if configPath := os.Getenv("SIGIL_CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		return "", errors.NewConfigError(
			"Configuration file not found",
			fmt.Sprintf("SIGIL_CONFIG_PATH is set to %q but the file does not exist", configPath),
			"Fix SIGIL_CONFIG_PATH or run 'sigil init' to create a config",
			nil,
		)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for {
		configPath := ConfigPath(dir)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NewConfigError(
		"Configuration not found",
		"No .sigil/config.yaml file found in current directory or any parent directory",
		"Run 'sigil init' to create a new configuration",
		nil,
	)
}

// applyEnvOverrides applies SIGIL_* environment variables, which take
// precedence over file-based configuration.
func (c *Config) applyEnvOverrides() {
	if root := os.Getenv("SIGIL_ROOT"); root != "" {
		c.Root = root
	}
	if workers := os.Getenv("SIGIL_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			c.Scan.Workers = n
		}
	}
}
