package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/observability"
	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

var rulesCommand = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and edit the stored time rules",
}

var (
	rulesConfigPath string
	rulesDataDir    string
)

var rulesListCommand = &cobra.Command{
	Use:   "list",
	Short: "List time rules in their matching order",
	RunE:  runRulesListCmd,
}

var rulesSetCommand = &cobra.Command{
	Use:   "set <group-key> <hours>",
	Short: "Create or update a time rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRulesSetCmd,
}

var rulesDeleteCommand = &cobra.Command{
	Use:   "delete <group-key>",
	Short: "Delete a time rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesDeleteCmd,
}

func init() {
	rulesCommand.PersistentFlags().StringVar(&rulesConfigPath, "config", "", "Path to config.json")
	rulesCommand.PersistentFlags().StringVar(&rulesDataDir, "data-dir", "", "Directory holding the sync's JSON state files")
	rulesCommand.AddCommand(rulesListCommand, rulesSetCommand, rulesDeleteCommand)
	rootCmd.AddCommand(rulesCommand)
}

func runRulesListCmd(_ *cobra.Command, _ []string) error {
	cfg, err := buildConfig(rulesConfigPath, rulesDataDir)
	if err != nil {
		return err
	}

	rules, warn, err := openStore(cfg).LoadRules()
	if err != nil {
		return err
	}
	if warn != "" {
		fmt.Printf("Warning: %s\n", warn)
	}
	if rules.Len() == 0 {
		fmt.Println("No time rules stored yet.")
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintRules(rules)
	return nil
}

func runRulesSetCmd(_ *cobra.Command, args []string) error {
	key := args[0]
	hours, err := strconv.ParseFloat(args[1], 64)
	if err != nil || hours <= 0 {
		return fmt.Errorf("hours must be a positive number, got %q", args[1])
	}

	cfg, err := buildConfig(rulesConfigPath, rulesDataDir)
	if err != nil {
		return err
	}
	st := openStore(cfg)

	rules, warn, err := st.LoadRules()
	if err != nil {
		return err
	}
	if warn != "" {
		fmt.Printf("Warning: %s\n", warn)
	}

	rules.Set(key, types.TimeRule{GroupKey: key, TimeTaken: hours})
	if err := st.SaveRules(rules); err != nil {
		return err
	}
	fmt.Printf("Rule %q set to %gh.\n", key, hours)
	return nil
}

func runRulesDeleteCmd(_ *cobra.Command, args []string) error {
	cfg, err := buildConfig(rulesConfigPath, rulesDataDir)
	if err != nil {
		return err
	}
	st := openStore(cfg)

	rules, warn, err := st.LoadRules()
	if err != nil {
		return err
	}
	if warn != "" {
		fmt.Printf("Warning: %s\n", warn)
	}

	if !rules.Delete(args[0]) {
		return fmt.Errorf("no rule named %q", args[0])
	}
	if err := st.SaveRules(rules); err != nil {
		return err
	}
	fmt.Printf("Rule %q deleted.\n", args[0])
	return nil
}
