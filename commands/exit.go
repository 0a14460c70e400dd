package commands

import (
	"fmt"
	"strconv"

	"github.com/ncsh/ncsh/core/vos"
)

// Exit asks the shell to quit once the current line is done.
func Exit(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "exit [N]",
		Short: "Exit the shell with status N, 0 if omitted.",
	}

	return cmd.Run(virtOS, func() int {
		code := 0
		switch args := cmd.Flags().Args(); len(args) {
		case 0:
		case 1:
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "%s: %s: numeric argument required\n", virtOS.Args()[0], args[0])
				code = 2
				break
			}
			code = n & 0xff
		default:
			fmt.Fprintf(virtOS.Stderr(), "%s: too many arguments\n", virtOS.Args()[0])
			return 1
		}

		virtOS.Exit(code)
		return code
	})
}

var _ vos.ProcessFunc = Exit
