// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

// Package config holds the persisted tool configuration. Every value has
// a working default; a config file only needs to exist once a setting
// diverges from it.
package config

import (
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

type SerialConfig struct {
	Port string `json:"port,omitempty"`
	Baud int    `json:"baud,omitempty"`
}

type ConnectorConfig struct {
	TCPAddress string `json:"tcpAddress,omitempty"`
	WSURL      string `json:"wsUrl,omitempty"`
}

type DashboardConfig struct {
	Address string `json:"address,omitempty"`
}

type Config struct {
	*SerialConfig    `json:"serial,omitempty"`
	*ConnectorConfig `json:"connector,omitempty"`
	*DashboardConfig `json:"dashboard,omitempty"`
	LogLevel         string `json:"logLevel,omitempty"`
	filepath         string
}

// Persist writes the config to its file, creating parent directories as
// needed. With overwrite false an existing file is left untouched.
func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// LoadConfig reads and unmarshals the config file over the current
// values. Callers treat a missing file as "defaults apply".
func (c *Config) LoadConfig() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	// A bare section key ("serial:") decodes as null and nils the
	// embedded pointer. Restore the defaults so promoted fields like
	// c.Port stay addressable.
	if c.SerialConfig == nil {
		c.SerialConfig = &SerialConfig{
			Port: DefaultSerialPort,
			Baud: DefaultBaudRate,
		}
	}
	if c.ConnectorConfig == nil {
		c.ConnectorConfig = &ConnectorConfig{}
	}
	if c.DashboardConfig == nil {
		c.DashboardConfig = &DashboardConfig{
			Address: DefaultDashboardAddress,
		}
	}
	return nil
}

// Filepath returns the path this config loads from and persists to
func (c *Config) Filepath() string {
	return c.filepath
}

// SetFilepath overrides the config file location. Empty paths are
// ignored so a blank --config flag keeps the default.
func (c *Config) SetFilepath(path string) {
	if path != "" {
		c.filepath = path
	}
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		SerialConfig: &SerialConfig{
			Port: DefaultSerialPort,
			Baud: DefaultBaudRate,
		},
		// The connector block stays empty so serial remains the
		// default source; setting tcpAddress or wsUrl opts in.
		ConnectorConfig: &ConnectorConfig{},
		DashboardConfig: &DashboardConfig{
			Address: DefaultDashboardAddress,
		},
		LogLevel: DefaultLogLevel,
		filepath: DefaultConfigPath(),
	}
}
