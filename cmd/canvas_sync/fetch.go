package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/observability"
	"github.com/daniel/canvas-reclaim-sync/internal/pipeline"
)

var fetchCommand = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch unsubmitted assignments from Canvas and record the new ones",
	RunE:  runFetchCmd,
}

var (
	fetchConfigPath string
	fetchDataDir    string
	fetchVerbose    bool
)

func init() {
	addConfigFlags(fetchCommand, &fetchConfigPath, &fetchDataDir)
	fetchCommand.Flags().BoolVarP(&fetchVerbose, "verbose", "v", false, "Print the new assignments")
	rootCmd.AddCommand(fetchCommand)
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(fetchConfigPath, fetchDataDir)
	if err != nil {
		return err
	}

	summary, err := pipeline.Fetch(cmd.Context(), cfg, openStore(cfg))
	if err != nil {
		return err
	}

	printWarnings(summary.Warnings)
	if summary.SkippedIncomplete > 0 {
		fmt.Printf("Skipped %d assignment(s) with missing fields.\n", summary.SkippedIncomplete)
	}
	fmt.Printf("Seen %d assignment(s), %d new.\n", summary.SeenTotal, len(summary.New))
	if fetchVerbose {
		observability.NewPrinter(os.Stdout).PrintNewAssignments(summary.New)
	}
	return nil
}
