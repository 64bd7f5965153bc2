package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("CANVAS_URL", "")
	t.Setenv("CANVAS_TOKEN", "")
	t.Setenv("SYNC_DATA_DIR", "")

	cfg := FromEnv()
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, DefaultSimilarityThreshold, cfg.SimilarityThreshold)
	assert.Equal(t, DefaultFetchParallelism, cfg.FetchParallelism)
}

func TestFromEnv_ReadsVariables(t *testing.T) {
	t.Setenv("CANVAS_URL", "https://canvas.example.edu")
	t.Setenv("CANVAS_TOKEN", "token-123")
	t.Setenv("SYNC_DATA_DIR", "/tmp/syncdata")

	cfg := FromEnv()
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasURL)
	assert.Equal(t, "token-123", cfg.CanvasToken)
	assert.Equal(t, "/tmp/syncdata", cfg.DataDir)
}

func TestLoadFile_MergesOverEnv(t *testing.T) {
	content := `{
		"canvas_url": "https://canvas.override.edu",
		"similarity_threshold": 0.7
	}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))

	base := &Config{
		CanvasURL:   "https://canvas.example.edu",
		CanvasToken: "token-123",
	}

	cfg, err := LoadFile(tmpFile, base)
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.override.edu", cfg.CanvasURL)
	assert.Equal(t, "token-123", cfg.CanvasToken, "unset file fields fall back to base")
	assert.Equal(t, 0.7, cfg.SimilarityThreshold)
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte("{ invalid"), 0o644))

	cfg, err := LoadFile(tmpFile, nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFile("", nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_BadThreshold(t *testing.T) {
	cfg := &Config{SimilarityThreshold: 1.5}
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadCanvasURL(t *testing.T) {
	cfg := &Config{CanvasURL: "not a url", SimilarityThreshold: 0.5}
	assert.Error(t, cfg.Validate())
}

func TestRequireCanvas(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireCanvas())

	cfg.CanvasURL = "https://canvas.example.edu"
	require.Error(t, cfg.RequireCanvas())

	cfg.CanvasToken = "token-123"
	assert.NoError(t, cfg.RequireCanvas())
}

func TestRequireReclaim(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireReclaim())

	withProfile := &Config{ChromeUserDataDir: "/tmp/profile"}
	assert.NoError(t, withProfile.RequireReclaim())

	withCreds := &Config{ReclaimEmail: "me@example.com", ReclaimPassword: "secret"}
	assert.NoError(t, withCreds.RequireReclaim())
}
