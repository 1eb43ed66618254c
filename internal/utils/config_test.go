package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultConnections, cfg.Connections)
	assert.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
	assert.Empty(t, cfg.Bucket)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sluice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"bucket: mybucket\nregion: eu-west-1\nconnections: 16\ndownload_dir: /tmp/dl\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mybucket", cfg.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 16, cfg.Connections)
	assert.Equal(t, "/tmp/dl", cfg.DownloadDir)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Bucket: "b", Connections: 10}
	assert.NoError(t, cfg.Validate())

	cfg.Bucket = ""
	assert.Error(t, cfg.Validate())

	cfg.Bucket = "b"
	cfg.Connections = 0
	assert.Error(t, cfg.Validate())
}
