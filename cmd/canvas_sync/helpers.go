package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/config"
	"github.com/daniel/canvas-reclaim-sync/internal/store"
)

// addConfigFlags registers the flags shared by every data-touching command.
func addConfigFlags(cmd *cobra.Command, configPath, dataDir *string) {
	cmd.Flags().StringVar(configPath, "config", "", "Path to config.json (values can be overridden by flags and env)")
	cmd.Flags().StringVar(dataDir, "data-dir", "", "Directory holding the sync's JSON state files")
}

// buildConfig layers configuration: environment first, then the optional
// config file, then explicit flags.
func buildConfig(configPath, dataDir string) (*config.Config, error) {
	cfg := config.FromEnv()

	if configPath != "" {
		loaded, err := config.LoadFile(configPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) *store.Store {
	return store.New(cfg.DataDir)
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}
