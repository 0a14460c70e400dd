package commands

import (
	"github.com/ncsh/ncsh/core/vos"
)

// NoOpCommand is a builtin that ignores its arguments and exits with a fixed
// status.
type NoOpCommand struct {
	Names    []string
	Use      string
	Short    string
	ExitCode int
}

// ToCommand converts the description to a functioning command.
func (c *NoOpCommand) ToCommand() vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:   c.Use,
			Short: c.Short,
			// Never bail, even if args are bad.
			NeverBail: true,
		}

		return cmd.Run(virtOS, func() int {
			return c.ExitCode
		})
	}
}

var noOpBuiltins = []NoOpCommand{
	{
		Names: []string{"true", ":"},
		Use:   "true [ARG]...",
		Short: "Do nothing, successfully.",
	},
	{
		Names:    []string{"false"},
		Use:      "false [ARG]...",
		Short:    "Do nothing, unsuccessfully.",
		ExitCode: 1,
	},
}
