package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/pipeline"
	"github.com/daniel/canvas-reclaim-sync/internal/prompt"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full sync end-to-end: fetch, allocate, publish",
	Long: `Fetches unsubmitted assignments from Canvas, prompts for time estimates on
new assignment categories, and creates Reclaim tasks for the results. Asks for
confirmation before opening the browser unless --yes is given.`,
	RunE: runSyncCmd,
}

var (
	runConfigPath  string
	runDataDir     string
	runSkipPublish bool
	runYes         bool
	runHeaded      bool
	runVerbose     bool
)

func init() {
	addConfigFlags(runCommand, &runConfigPath, &runDataDir)
	runCommand.Flags().BoolVar(&runSkipPublish, "skip-publish", false, "Stop after allocation; do not open a browser")
	runCommand.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip the confirmation before publishing")
	runCommand.Flags().BoolVar(&runHeaded, "headed", false, "Show the browser window instead of running headless")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed stage output")
	rootCmd.AddCommand(runCommand)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(runConfigPath, runDataDir)
	if err != nil {
		return err
	}

	return pipeline.Run(cmd.Context(), pipeline.RunOptions{
		Config:      cfg,
		Store:       openStore(cfg),
		Estimator:   prompt.NewConsole(os.Stdin),
		SkipPublish: runSkipPublish,
		AutoConfirm: runYes,
		ConfirmIn:   os.Stdin,
		Headless:    !runHeaded,
		Verbose:     runVerbose,
	})
}
