package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ncsh/ncsh/core/ttylog"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore sessions recorded with --record.",
}

// playCommand replays a recording at the speed it was made
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return replayFile(args[0], sink)
	},
}

// catCommand prints a recording without delays
var catCommand = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print the full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		return replayFile(args[0], ttylog.NewClientOutput(cmd.OutOrStdout()))
	},
}

// infoCommand prints the recording's header
var infoCommand = &cobra.Command{
	Use:   "info FILE.cast",
	Short: "Show when and at what size a session was recorded.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		header, err := ttylog.NewAsciicastLogSource(fd).Header()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "title:    %s\n", header.Title)
		fmt.Fprintf(w, "recorded: %s\n", time.Unix(header.Timestamp, 0).Format(time.RFC1123))
		fmt.Fprintf(w, "size:     %dx%d\n", header.Width, header.Height)
		return nil
	},
}

func replayFile(name string, sink ttylog.LogSink) error {
	fd, err := os.Open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)
	logsCmd.AddCommand(infoCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
