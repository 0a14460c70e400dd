package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/ncsh/ncsh/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath    string
	debug      bool
	command    string
	recordPath string

	// exitStatus is the status of the shell once the command returns.
	exitStatus int
)

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ncsh"
	}
	return filepath.Join(dir, "ncsh")
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ncsh [flags] [SCRIPT]",
	Short: "A small interactive command shell",
	Long: `ncsh runs commands, pipelines, redirections and background jobs.

It's interactive when standard input is a terminal, otherwise lines are read
from standard input, SCRIPT or the --command flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		opts := shellOptions{
			config:     configuration,
			record:     recordPath,
			hasCommand: cmd.Flags().Changed("command"),
			command:    command,
		}
		if len(args) > 0 {
			opts.script = args[0]
		}

		exitStatus, err = runShell(cmd, opts)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigDir(), "config path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to stderr")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run a single line and exit")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
}
