package commands

import (
	"fmt"

	"github.com/ncsh/ncsh/core/vos"
)

// Which implements the UNIX which command, builtins in r are reported as
// such.
func Which(r *Registry) vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:   "which [COMMAND...]",
			Short: "Locate a command.",
		}

		return cmd.RunEachArg(virtOS, func(arg string) error {
			if _, ok := r.Lookup(arg); ok {
				fmt.Fprintf(virtOS.Stdout(), "%s: shell builtin\n", arg)
				return nil
			}

			res, err := vos.LookPath(virtOS, arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(virtOS.Stdout(), res)
			return nil
		})
	}
}
