// Package vos provides the view of the operating system the shell and its
// builtins run against: environment, standard streams, working directory and
// filesystem.
//
// Builtins only ever see a VOS so they can be run against an in-memory
// filesystem in tests and against the host when the shell is interactive.
package vos

import (
	"io"

	"github.com/spf13/afero"
)

// VFS is the filesystem layer of the virtual OS.
type VFS = afero.Fs

// VIO holds the standard streams of a process.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// VProc holds the per-process state of the virtual OS.
type VProc interface {
	// Args holds the command line arguments, including the command as Args[0].
	Args() []string

	// Getpid returns the process ID of the shell.
	Getpid() int

	// Getwd returns the working directory.
	Getwd() (dir string, err error)

	// Chdir changes the working directory.
	Chdir(dir string) error

	// Exit asks the shell to terminate with the given status once the current
	// line is finished.
	Exit(code int)
}

// VOS provides a virtual OS interface.
type VOS interface {
	VEnv
	VIO
	VProc
	VFS

	// Invoke returns a view of the OS for running a builtin. The view shares
	// the environment and working directory with its parent but has its own
	// arguments and streams.
	Invoke(argv []string, files VIO) VOS

	// StartProcess returns a copy of the OS that no longer shares the
	// environment or working directory with its parent.
	StartProcess(name string, argv []string, attr *ProcAttr) (VOS, error)
}

// ProcessFunc is a builtin that can be run against a VOS, it returns the
// exit status.
type ProcessFunc func(VOS) int
