package commands

import (
	"fmt"
	"strings"

	"github.com/ncsh/ncsh/core/vos"
)

// ShellVersion is reported by the version and help builtins.
var ShellVersion = "0.1.0"

// Version prints the shell version.
func Version(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "version",
		Short: "Print the shell version.",
	}

	return cmd.Run(virtOS, func() int {
		fmt.Fprintf(virtOS.Stdout(), "ncsh version %s\n", ShellVersion)
		return 0
	})
}

// Help lists the builtins in r or shows the help of the named ones.
func Help(r *Registry) vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:   "help [BUILTIN...]",
			Short: "Display information about builtin commands.",
		}
		var colors ColorPrinter
		colors.Init(cmd.Flags(), virtOS)

		return cmd.Run(virtOS, func() int {
			w := virtOS.Stdout()

			if topics := cmd.Flags().Args(); len(topics) > 0 {
				ret := 0
				for _, name := range topics {
					proc, ok := r.Lookup(name)
					if !ok {
						fmt.Fprintf(virtOS.Stderr(), "help: no help topics match %q\n", name)
						ret = 1
						continue
					}
					proc(virtOS.Invoke([]string{name, "--help"}, virtOS))
				}
				return ret
			}

			fmt.Fprintf(w, "ncsh version %s\n", ShellVersion)
			fmt.Fprintln(w, "These shell commands are defined internally.")
			fmt.Fprintln(w, "Type `help NAME' to find out more about the command NAME.")
			fmt.Fprintln(w)

			entries := r.List()
			width := 0
			for _, e := range entries {
				width = max(width, len(strings.Join(e.Names, ", ")))
			}
			for _, e := range entries {
				names := strings.Join(e.Names, ", ")
				padding := strings.Repeat(" ", width-len(names))
				fmt.Fprintf(w, "  %s%s  %s\n", colors.Sprintf(ColorBoldGreen, "%s", names), padding, e.Short)
			}
			return 0
		})
	}
}
