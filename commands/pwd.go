package commands

import (
	"fmt"
	"os"

	"github.com/ncsh/ncsh/core/vos"
	"github.com/ncsh/ncsh/third_party/realpath"
	"github.com/spf13/afero"
)

// linkOS resolves symlinks through the virtual OS.
type linkOS struct {
	vos.VOS
}

var _ realpath.OS = linkOS{}

func (l linkOS) Lstat(name string) (os.FileInfo, error) {
	if lstater, ok := l.VOS.(afero.Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(name)
		return fi, err
	}
	return l.VOS.Stat(name)
}

func (l linkOS) Readlink(name string) (string, error) {
	if reader, ok := l.VOS.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: vos.FsOpReadlink, Path: name, Err: afero.ErrNoReadlink}
}

// physicalPath resolves every symlink in name.
func physicalPath(virtOS vos.VOS, name string) (string, error) {
	return realpath.Realpath(linkOS{virtOS}, name)
}

// Pwd implements the UNIX pwd command.
func Pwd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "pwd [-LP]",
		Short: "Print the name of the current working directory.",
	}
	physical := cmd.Flags().Bool('P', "print the directory with all symlinks resolved")
	_ = cmd.Flags().Bool('L', "print the directory as it was entered, the default")

	return cmd.Run(virtOS, func() int {
		pwd, err := virtOS.Getwd()
		if err == nil && *physical {
			pwd, err = physicalPath(virtOS, pwd)
		}
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "pwd: %v\n", err)
			return 1
		}
		fmt.Fprintln(virtOS.Stdout(), pwd)
		return 0
	})
}

var _ vos.ProcessFunc = Pwd
