// Package main provides the canvas_sync CLI, which mirrors Canvas assignment
// deadlines into Reclaim as scheduled tasks.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canvas_sync",
	Short: "Sync Canvas assignment deadlines into Reclaim",
	Long: `canvas_sync fetches unsubmitted assignments from Canvas, groups them into
categories by name similarity, asks once per new category how long it takes,
and creates matching tasks in the Reclaim planner.`,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
