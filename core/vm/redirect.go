package vm

import (
	"io"
	"os"

	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

// stdio holds the streams handed to a command, nil means /dev/null.
type stdio struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// errOut is where the VM writes its own messages about a command.
func (s stdio) errOut() io.Writer {
	if s.stderr == nil {
		return io.Discard
	}
	return s.stderr
}

type redirect struct {
	mode   shell.Mode
	stream shell.Stream
	target string
}

func openFlags(mode shell.Mode) int {
	switch mode {
	case shell.In:
		return os.O_RDONLY
	case shell.Append:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
}

// openRedirects opens every target in order and points the streams at them.
// All targets are opened even when a later one replaces the same stream. On
// error the files opened so far are closed.
func openRedirects(fs vos.VFS, redirects []redirect, std *stdio) ([]io.Closer, error) {
	var files []io.Closer
	for _, r := range redirects {
		f, err := fs.OpenFile(r.target, openFlags(r.mode), 0666)
		if err != nil {
			closeAll(files)
			return nil, err
		}
		files = append(files, f)

		switch r.stream {
		case shell.Stdin:
			std.stdin = f
		case shell.Stdout:
			std.stdout = f
		case shell.Stderr:
			std.stderr = f
		case shell.StdoutStderr:
			std.stdout = f
			std.stderr = f
		}
	}
	return files, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
