package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/observability"
	"github.com/daniel/canvas-reclaim-sync/internal/pipeline"
	"github.com/daniel/canvas-reclaim-sync/internal/prompt"
)

var allocateCommand = &cobra.Command{
	Use:   "allocate",
	Short: "Group new assignments and ask for a time estimate per new category",
	Long: `Runs the grouping pass over the assignments found by the last fetch. Known
categories reuse their stored time rule; each new category prompts once for an
estimate in hours. Cancelling the prompt discards everything from this run.`,
	RunE: runAllocateCmd,
}

var (
	allocateConfigPath string
	allocateDataDir    string
	allocateVerbose    bool
)

func init() {
	addConfigFlags(allocateCommand, &allocateConfigPath, &allocateDataDir)
	allocateCommand.Flags().BoolVarP(&allocateVerbose, "verbose", "v", false, "Print the timed assignments")
	rootCmd.AddCommand(allocateCommand)
}

func runAllocateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(allocateConfigPath, allocateDataDir)
	if err != nil {
		return err
	}

	estimator := prompt.NewConsole(os.Stdin)
	summary, err := pipeline.AllocateNew(cmd.Context(), cfg, openStore(cfg), estimator)
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			fmt.Println("Allocation canceled. No rules or timed assignments were saved.")
			return nil
		}
		return err
	}

	printWarnings(summary.Warnings)
	printWarnings(summary.Skipped)
	fmt.Printf("Timed %d assignment(s), %d new rule(s).\n", len(summary.Timed), summary.NewRules)
	if allocateVerbose {
		observability.NewPrinter(os.Stdout).PrintTimedAssignments(summary.Timed)
	}
	return nil
}
