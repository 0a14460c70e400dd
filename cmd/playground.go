package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncsh/ncsh/core/config"
	"github.com/spf13/cobra"
)

// playgroundCmd runs the shell with a default configuration in a scratch
// directory
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell with default settings in a temporary directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := os.MkdirTemp("", "ncsh-playground")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		configDir := filepath.Join(dir, "config")
		if err := config.Initialize(configDir, playgroundLogger); err != nil {
			return err
		}
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}

		workDir := filepath.Join(dir, "work")
		if err := os.Mkdir(workDir, 0755); err != nil {
			return err
		}

		playgroundLogger.Printf("Working in: %s", workDir)
		playgroundLogger.Printf("See events with: tail -f %s", filepath.Join(configDir, config.EventLogName))
		playgroundLogger.Println(strings.Repeat("=", 80))

		exitStatus, err = runShell(cmd, shellOptions{
			config: cfg,
			dir:    workDir,
			record: recordPath,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
}
