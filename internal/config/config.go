// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// DefaultSimilarityThreshold is the grouping cutoff for name similarity.
// Kept at the historical value for behavioral compatibility; tunable via
// config, not a derived requirement.
const DefaultSimilarityThreshold = 0.50

// DefaultFetchParallelism bounds concurrent per-course assignment requests.
const DefaultFetchParallelism = 4

// Config holds everything the pipeline stages need. It is constructed once at
// startup and passed into each stage explicitly; there is no ambient global
// configuration state.
type Config struct {
	// Canvas API
	CanvasURL   string `json:"canvas_url,omitempty" validate:"omitempty,url"`
	CanvasToken string `json:"canvas_token,omitempty"`

	// Reclaim browser automation
	ReclaimEmail      string `json:"reclaim_email,omitempty" validate:"omitempty,email"`
	ReclaimPassword   string `json:"reclaim_password,omitempty"`
	ChromeUserDataDir string `json:"chrome_user_data_dir,omitempty"`

	// Data files
	DataDir string `json:"data_dir,omitempty"`

	// Allocation
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`

	// Optional run-history store
	DatabaseURL string `json:"database_url,omitempty"`

	// Fetch behavior
	FetchParallelism int `json:"fetch_parallelism,omitempty" validate:"omitempty,gte=1"`

	Verbose bool `json:"verbose,omitempty"`
}

// FromEnv builds a Config from environment variables (a .env file, if present,
// is loaded by main before this runs) and fills defaults.
func FromEnv() *Config {
	cfg := &Config{
		CanvasURL:         os.Getenv("CANVAS_URL"),
		CanvasToken:       os.Getenv("CANVAS_TOKEN"),
		ReclaimEmail:      os.Getenv("RECLAIM_EMAIL"),
		ReclaimPassword:   os.Getenv("RECLAIM_PASSWORD"),
		ChromeUserDataDir: os.Getenv("CHROME_USER_DATA_DIR"),
		DataDir:           os.Getenv("SYNC_DATA_DIR"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile loads configuration overrides from a JSON file and merges them over
// the environment-derived config. File values win where set.
func LoadFile(path string, base *Config) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overrides Config
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	merged := overrides.mergeOver(base)
	merged.applyDefaults()
	return merged, nil
}

// mergeOver returns a copy of c with empty fields filled from base.
func (c *Config) mergeOver(base *Config) *Config {
	result := *c
	if base == nil {
		return &result
	}

	if result.CanvasURL == "" {
		result.CanvasURL = base.CanvasURL
	}
	if result.CanvasToken == "" {
		result.CanvasToken = base.CanvasToken
	}
	if result.ReclaimEmail == "" {
		result.ReclaimEmail = base.ReclaimEmail
	}
	if result.ReclaimPassword == "" {
		result.ReclaimPassword = base.ReclaimPassword
	}
	if result.ChromeUserDataDir == "" {
		result.ChromeUserDataDir = base.ChromeUserDataDir
	}
	if result.DataDir == "" {
		result.DataDir = base.DataDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = base.DatabaseURL
	}
	if result.SimilarityThreshold == 0 {
		result.SimilarityThreshold = base.SimilarityThreshold
	}
	if result.FetchParallelism == 0 {
		result.FetchParallelism = base.FetchParallelism
	}
	// Bool fields: cannot distinguish unset from false, so either source may
	// switch verbose on.
	result.Verbose = result.Verbose || base.Verbose

	return &result
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.FetchParallelism == 0 {
		c.FetchParallelism = DefaultFetchParallelism
	}
}

// Validate checks field formats and ranges.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RequireCanvas ensures the Canvas credentials needed by the fetch stage are set.
func (c *Config) RequireCanvas() error {
	if c.CanvasURL == "" {
		return fmt.Errorf("CANVAS_URL is missing")
	}
	if c.CanvasToken == "" {
		return fmt.Errorf("CANVAS_TOKEN is missing")
	}
	return nil
}

// RequireReclaim ensures the publisher has either login credentials or a
// persistent browser profile with a saved session.
func (c *Config) RequireReclaim() error {
	if c.ChromeUserDataDir != "" {
		return nil
	}
	if c.ReclaimEmail == "" || c.ReclaimPassword == "" {
		return fmt.Errorf("set RECLAIM_EMAIL and RECLAIM_PASSWORD, or CHROME_USER_DATA_DIR with a saved session (see save-auth)")
	}
	return nil
}
