package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfig_EnvOnly(t *testing.T) {
	t.Setenv("CANVAS_URL", "https://canvas.example")
	t.Setenv("CANVAS_TOKEN", "token")
	t.Setenv("SYNC_DATA_DIR", "")

	cfg, err := buildConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example", cfg.CanvasURL)
	assert.Equal(t, ".", cfg.DataDir, "data dir defaults to the working directory")
}

func TestBuildConfig_FileOverridesEnv(t *testing.T) {
	t.Setenv("CANVAS_URL", "https://env.example")
	t.Setenv("CANVAS_TOKEN", "token")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"canvas_url": "https://file.example"}`), 0o644))

	cfg, err := buildConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://file.example", cfg.CanvasURL)
	assert.Equal(t, "token", cfg.CanvasToken, "values absent from the file survive")
}

func TestBuildConfig_FlagOverridesFile(t *testing.T) {
	t.Setenv("CANVAS_URL", "https://env.example")
	t.Setenv("CANVAS_TOKEN", "token")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data_dir": "/from/file"}`), 0o644))

	cfg, err := buildConfig(path, "/from/flag")
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
}

func TestBuildConfig_MissingFileFails(t *testing.T) {
	_, err := buildConfig(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)
}
