// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultSerialPort, cfg.Port)
	assert.Equal(t, DefaultBaudRate, cfg.Baud)
	assert.Empty(t, cfg.TCPAddress, "connector sources must be opt-in")
	assert.Empty(t, cfg.WSURL)
	assert.Equal(t, DefaultDashboardAddress, cfg.Address)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultConfigPath(), cfg.Filepath())
}

func TestDefaultConfigPath(t *testing.T) {
	t.Parallel()
	path := DefaultConfigPath()

	assert.Contains(t, path, ConfigDir)
	assert.Equal(t, ConfigFile, filepath.Base(path))
}

func TestSetFilepath(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	original := cfg.Filepath()

	cfg.SetFilepath("")
	assert.Equal(t, original, cfg.Filepath(), "empty path must keep the default")

	cfg.SetFilepath("/tmp/other-config")
	assert.Equal(t, "/tmp/other-config", cfg.Filepath())
}

// ---------------------------------------------------------------------------
// Persist / Load
// ---------------------------------------------------------------------------

func TestPersistAndLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	cfg := NewDefaultConfig()
	cfg.SetFilepath(path)
	cfg.Port = "/dev/ttyACM3"
	cfg.Baud = 57600
	cfg.WSURL = "ws://headset.local:13854"
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Persist(false))

	loaded := NewDefaultConfig()
	loaded.SetFilepath(path)
	require.NoError(t, loaded.LoadConfig())

	assert.Equal(t, "/dev/ttyACM3", loaded.Port)
	assert.Equal(t, 57600, loaded.Baud)
	assert.Equal(t, "ws://headset.local:13854", loaded.WSURL)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Empty(t, loaded.TCPAddress)
}

func TestPersist_NoOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")

	cfg := NewDefaultConfig()
	cfg.SetFilepath(path)
	require.NoError(t, cfg.Persist(false))

	err := cfg.Persist(false)
	require.Error(t, err)
	var exists ErrConfigFileExists
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, path, exists.Path)

	assert.NoError(t, cfg.Persist(true))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	cfg.SetFilepath(filepath.Join(t.TempDir(), "does-not-exist"))

	err := cfg.LoadConfig()
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  port: /dev/ttyACM7\n"), 0644))

	cfg := NewDefaultConfig()
	cfg.SetFilepath(path)
	require.NoError(t, cfg.LoadConfig())

	assert.Equal(t, "/dev/ttyACM7", cfg.Port)
	assert.Equal(t, DefaultBaudRate, cfg.Baud, "unset keys must keep their defaults")
	assert.Empty(t, cfg.TCPAddress)
}

func TestLoadConfig_NullSectionKeepsDefaults(t *testing.T) {
	t.Parallel()

	// A key with no value is legal YAML for null; it must read as "use
	// the defaults", not nil the section out from under the commands.
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("serial:\nconnector:\ndashboard:\n"), 0644))

	cfg := NewDefaultConfig()
	cfg.SetFilepath(path)
	require.NoError(t, cfg.LoadConfig())

	require.NotNil(t, cfg.SerialConfig)
	require.NotNil(t, cfg.ConnectorConfig)
	require.NotNil(t, cfg.DashboardConfig)
	assert.Equal(t, DefaultSerialPort, cfg.Port)
	assert.Equal(t, DefaultBaudRate, cfg.Baud)
	assert.Empty(t, cfg.TCPAddress)
	assert.Equal(t, DefaultDashboardAddress, cfg.Address)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unclosed\n"), 0644))

	cfg := NewDefaultConfig()
	cfg.SetFilepath(path)
	assert.Error(t, cfg.LoadConfig())
}
