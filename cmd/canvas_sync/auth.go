package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daniel/canvas-reclaim-sync/internal/publisher"
)

var saveAuthCommand = &cobra.Command{
	Use:   "save-auth",
	Short: "Log in to Reclaim once and save the session for headless runs",
	Long: `Opens a visible browser on the Reclaim login page and waits for you to sign
in. The session is stored in the Chrome profile directory, so later publish
runs need no credentials. Required for accounts that log in through SSO.`,
	RunE: runSaveAuthCmd,
}

var (
	saveAuthConfigPath string
	saveAuthDataDir    string
	saveAuthWait       time.Duration
)

func init() {
	addConfigFlags(saveAuthCommand, &saveAuthConfigPath, &saveAuthDataDir)
	saveAuthCommand.Flags().DurationVar(&saveAuthWait, "wait", 2*time.Minute, "How long to wait for the login to complete")
	rootCmd.AddCommand(saveAuthCommand)
}

func runSaveAuthCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(saveAuthConfigPath, saveAuthDataDir)
	if err != nil {
		return err
	}
	if cfg.ChromeUserDataDir == "" {
		return fmt.Errorf("set CHROME_USER_DATA_DIR (or chrome_user_data_dir in the config file) to choose where the session is saved")
	}

	return publisher.SaveAuthState(cmd.Context(), cfg.ChromeUserDataDir, saveAuthWait)
}
