package commands

import (
	"fmt"

	"github.com/ncsh/ncsh/core/vos"
)

// Cd implements the cd builtin. With no argument it changes to $HOME and
// "cd -" changes to $OLDPWD and prints it.
func Cd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cd [-P] [DIR]",
		Short: "Change the shell working directory.",
	}
	physical := cmd.Flags().Bool('P', "resolve symlinks in DIR before changing to it")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stderr()
		args := cmd.Flags().Args()

		var dir string
		printDir := false
		switch len(args) {
		case 0:
			home, err := virtOS.UserHomeDir()
			if err != nil {
				fmt.Fprintln(w, "cd: HOME not set")
				return 1
			}
			dir = home
		case 1:
			dir = args[0]
			if dir == "-" {
				dir = virtOS.Getenv(EnvOldPWD)
				if dir == "" {
					fmt.Fprintln(w, "cd: OLDPWD not set")
					return 1
				}
				printDir = true
			}
		default:
			fmt.Fprintln(w, "cd: too many arguments")
			return 1
		}

		if *physical {
			resolved, err := physicalPath(virtOS, dir)
			if err != nil {
				fmt.Fprintf(w, "cd: %v\n", err)
				return 1
			}
			dir = resolved
		}

		previous, _ := virtOS.Getwd()
		if err := virtOS.Chdir(dir); err != nil {
			fmt.Fprintf(w, "cd: %v\n", err)
			return 1
		}

		wd, _ := virtOS.Getwd()
		virtOS.Setenv(EnvOldPWD, previous)
		virtOS.Setenv(EnvPWD, wd)
		if printDir {
			fmt.Fprintln(virtOS.Stdout(), wd)
		}
		return 0
	})
}

var _ vos.ProcessFunc = Cd
