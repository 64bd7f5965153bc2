package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/pipeline"
)

var publishCommand = &cobra.Command{
	Use:   "publish",
	Short: "Create Reclaim tasks for timed assignments that are not synced yet",
	RunE:  runPublishCmd,
}

var (
	publishConfigPath string
	publishDataDir    string
	publishHeaded     bool
)

func init() {
	addConfigFlags(publishCommand, &publishConfigPath, &publishDataDir)
	publishCommand.Flags().BoolVar(&publishHeaded, "headed", false, "Show the browser window instead of running headless")
	rootCmd.AddCommand(publishCommand)
}

func runPublishCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(publishConfigPath, publishDataDir)
	if err != nil {
		return err
	}

	summary, err := pipeline.PublishTimed(cmd.Context(), cfg, openStore(cfg), !publishHeaded)
	if err != nil {
		return err
	}

	printWarnings(summary.Warnings)
	printWarnings(summary.Report.Failures)
	fmt.Printf("Synced %d of %d task(s).\n", summary.Report.Synced, summary.Report.Attempted)
	return nil
}
