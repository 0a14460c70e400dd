package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Export implements the export builtin, every variable in the shell is
// exported so it only sets values. With no arguments it prints the
// environment.
func Export(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "export [NAME[=VALUE] ...]",
		Short: "Set environment variables.",
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			for _, entry := range virtOS.Environ() {
				name, value, _ := strings.Cut(entry, "=")
				fmt.Fprintf(virtOS.Stdout(), "export %s=%s\n", name, shell.QuoteWord(value))
			}
			return 0
		}

		ret := 0
		for _, arg := range args {
			name, value, hasValue := strings.Cut(arg, "=")
			if !identifier.MatchString(name) {
				fmt.Fprintf(virtOS.Stderr(), "export: %q: not a valid identifier\n", name)
				ret = 1
				continue
			}
			if !hasValue {
				continue
			}
			if err := virtOS.Setenv(name, value); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "export: %v\n", err)
				ret = 1
			}
		}
		return ret
	})
}

// Unset implements the unset builtin for environment variables.
func Unset(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "unset [NAME...]",
		Short: "Unset environment variables.",
	}

	return cmd.RunEachArg(virtOS, func(name string) error {
		if !identifier.MatchString(name) {
			return fmt.Errorf("not a valid identifier")
		}
		return virtOS.Unsetenv(name)
	})
}

var _ vos.ProcessFunc = Export
var _ vos.ProcessFunc = Unset
