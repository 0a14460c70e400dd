package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ncsh/ncsh/commands"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the shell runs in-process.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		for _, entry := range commands.NewDefaultRegistry(commands.NewSession()).List() {
			fmt.Fprintf(w, "%s\t%s\n", strings.Join(entry.Names, ", "), entry.Short)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
