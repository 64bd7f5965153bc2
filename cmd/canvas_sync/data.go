package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/store"
)

var dataCommand = &cobra.Command{
	Use:   "data",
	Short: "Manage the sync's JSON state files",
}

var (
	dataConfigPath string
	dataDataDir    string
	dataResetYes   bool
)

var dataResetCommand = &cobra.Command{
	Use:   "reset",
	Short: "Reset all state files to their empty defaults",
	RunE:  runDataResetCmd,
}

var dataBackupCommand = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the seen collection to its prev_ backup file",
	RunE:  runDataBackupCmd,
}

var dataRestoreCommand = &cobra.Command{
	Use:   "restore",
	Short: "Restore the seen collection from its prev_ backup file",
	RunE:  runDataRestoreCmd,
}

func init() {
	dataCommand.PersistentFlags().StringVar(&dataConfigPath, "config", "", "Path to config.json")
	dataCommand.PersistentFlags().StringVar(&dataDataDir, "data-dir", "", "Directory holding the sync's JSON state files")
	dataResetCommand.Flags().BoolVarP(&dataResetYes, "yes", "y", false, "Skip the confirmation prompt")
	dataCommand.AddCommand(dataResetCommand, dataBackupCommand, dataRestoreCommand)
	rootCmd.AddCommand(dataCommand)
}

func runDataResetCmd(_ *cobra.Command, _ []string) error {
	cfg, err := buildConfig(dataConfigPath, dataDataDir)
	if err != nil {
		return err
	}

	if !dataResetYes {
		fmt.Print("This wipes the seen, new, timed, and rules files. Continue? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Println("Reset aborted.")
			return nil
		}
	}

	st := openStore(cfg)
	err = st.Reset(store.SeenFile, store.PrevSeenFile, store.NewNamesFile, store.RulesFile, store.TimedFile)
	if err != nil {
		return err
	}
	fmt.Println("All state files reset.")
	return nil
}

func runDataBackupCmd(_ *cobra.Command, _ []string) error {
	cfg, err := buildConfig(dataConfigPath, dataDataDir)
	if err != nil {
		return err
	}
	if err := openStore(cfg).BackupSeen(); err != nil {
		return err
	}
	fmt.Println("Seen collection backed up.")
	return nil
}

func runDataRestoreCmd(_ *cobra.Command, _ []string) error {
	cfg, err := buildConfig(dataConfigPath, dataDataDir)
	if err != nil {
		return err
	}
	if err := openStore(cfg).RestoreSeen(); err != nil {
		return err
	}
	fmt.Println("Seen collection restored from backup.")
	return nil
}
