package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig tests defaults, the optional TOML file and environment overrides.
func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, ".", cfg.Paths.LogDir)
		assert.Equal(t, "_iOS", cfg.Timestamps.Suffix)
		assert.Equal(t, []string{".mov"}, cfg.Timestamps.Extensions)
		assert.Equal(t, "_from_source", cfg.Policy.RenameSuffix)
		assert.Equal(t, "overwrite_backup", cfg.Policy.BackupPrefix)
		assert.False(t, cfg.Policy.DryRun)
		assert.Equal(t, "exiftool", cfg.Metadata.Backend)
		assert.Equal(t, 200, cfg.Metadata.BatchSize)
		assert.Equal(t, 60, cfg.Metadata.TimeoutSeconds)
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[paths]
source = "/old"
destination = "/new"

[policy]
dry_run = true

[timestamps]
extensions = [".mov", ".mp4"]
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".toml"), []byte(content), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "/old", cfg.Paths.Source)
		assert.Equal(t, "/new", cfg.Paths.Destination)
		assert.True(t, cfg.Policy.DryRun)
		assert.Equal(t, []string{".mov", ".mp4"}, cfg.Timestamps.Extensions)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("PATHS_SOURCE", "/env/source")
		t.Setenv("METADATA_BACKEND", "native")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "/env/source", cfg.Paths.Source)
		assert.Equal(t, "native", cfg.Metadata.Backend)
	})

	t.Run("Invalid file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".toml"), []byte("[paths"), 0644))

		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}

// TestInit tests writing a default file that LoadConfig reads back.
func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName+".toml")

	cfg := Default()
	cfg.Paths.Source = "/written"
	require.NoError(t, Init(path, cfg))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/written", loaded.Paths.Source)
	assert.Equal(t, "_iOS", loaded.Timestamps.Suffix)

	err = Init(path, cfg)
	assert.ErrorContains(t, err, "already exists")
}

// TestRequirePaths tests missing and unknown path names.
func TestRequirePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.Source = "/src"

	assert.NoError(t, cfg.RequirePaths("source"))
	assert.ErrorIs(t, cfg.RequirePaths("source", "destination"), ErrMissingPath)
	assert.Error(t, cfg.RequirePaths("elsewhere"))
}
