package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks that defaults are filled and bad log levels are rejected.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	settings := &Config{LogLevel: "loud"}
	require.ErrorIs(t, Validate(settings), errUnknownLogLevel)

	settings = &Config{HostDir: "/opt/host/mods"}
	require.NoError(t, Validate(settings))
	require.Equal(t, "/opt/host/mods", settings.HostDir)
	require.Equal(t, DefaultOutputDir, settings.OutputDir)
	require.Equal(t, DefaultHostProcess, settings.HostProcess)
	require.True(t, settings.ShouldVerify())
}

// TestLoadMissingFileUsesDefaults ensures an absent settings file is not an error.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.NotEmpty(t, cfg.HostDir)
}

// TestLoadMalformed ensures a settings file that is not YAML fails loudly.
func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host_dir: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	verify := false

	settings := &Config{
		HostDir:   filepath.Join(dir, "mods"),
		OutputDir: "out",
		LogLevel:  "debug",
		Verify:    &verify,
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.HostDir, loaded.HostDir)
	require.Equal(t, "out", loaded.OutputDir)
	require.Equal(t, "debug", loaded.LogLevel)
	require.False(t, loaded.ShouldVerify())
}
