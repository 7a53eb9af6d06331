package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ".", config.OutputDir)
	assert.NotEmpty(t, config.SymbolDB)
	assert.False(t, config.Listing.DumpCode)
	assert.False(t, config.Listing.ShowDebug)
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		want := &Config{
			OutputDir: "/tmp/extracted",
			SymbolDB:  "/tmp/symbols",
			Listing:   Listing{DumpCode: true, ShowDebug: true},
		}
		data, err := yaml.Marshal(want)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(configPath, data, 0600))

		got, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("output_dir: [unclosed"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := DefaultConfig()
	want.OutputDir = "/var/psx/objs"

	require.NoError(t, SaveConfig(want, configPath))

	got, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigExists(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	assert.False(t, ConfigExists(configPath))

	require.NoError(t, SaveConfig(DefaultConfig(), configPath))
	assert.True(t, ConfigExists(configPath))
}
