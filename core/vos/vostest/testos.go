// Package vostest provides a deterministic virtual OS for testing builtins.
package vostest

import (
	"bytes"
	"io"

	"github.com/ncsh/ncsh/core/vos"
	"github.com/spf13/afero"
)

// HomeDir is the home and initial working directory of NewDeterministicOS.
const HomeDir = "/home/user"

// NewDeterministicFs creates an in-memory filesystem with a home directory
// and a few executables on the PATH.
func NewDeterministicFs() afero.Fs {
	fs := afero.NewMemMapFs()
	fs.MkdirAll(HomeDir, 0755)
	fs.MkdirAll("/tmp", 0777)
	for _, exe := range []string{"/bin/ls", "/bin/cat", "/usr/bin/env", "/usr/bin/grep"} {
		afero.WriteFile(fs, exe, []byte("#!/bin/true\n"), 0755)
	}
	afero.WriteFile(fs, "/etc/motd", []byte("hello\n"), 0644)
	return fs
}

// NewDeterministicEnv creates the environment of NewDeterministicOS.
func NewDeterministicEnv() *vos.MapEnv {
	return vos.NewMapEnvFrom(vos.EnvironList{
		"HOME=" + HomeDir,
		"PATH=/bin:/usr/bin",
		"USER=user",
	})
}

// NewDeterministicOS creates an OS with the same filesystem, environment and
// working directory every time.
func NewDeterministicOS(files vos.VIO) *vos.OS {
	return vos.New(NewDeterministicFs(), NewDeterministicEnv(), files, HomeDir)
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function
	Process vos.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string
	// If Env is non-empty, it gives the environment variables for the
	// new process in the form returned by Environ.
	// If it is nil, the result of Environ will be used.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ExitStatus int

	// Setup is called before the process is run.
	Setup func(vos.VOS) error
}

// Command returns the Cmd struct to execute the named process with the given
// arguments.
func Command(process vos.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
	}
}

// CombinedOutput runs the command and returns its combined standard output
// and standard error.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the comand and waits for it to complete.
func (c *Cmd) Run() error {
	deterministicOS := NewDeterministicOS(nil)
	runner, err := deterministicOS.StartProcess(c.Argv[0], c.Argv, &vos.ProcAttr{
		Dir:   c.Dir,
		Env:   c.Env,
		Files: vos.NewVIOAdapter(c.Stdin, c.Stdout, c.Stderr),
	})
	if err != nil {
		return err
	}

	if c.Setup != nil {
		if err := c.Setup(runner); err != nil {
			return err
		}
	}

	c.ExitStatus = c.Process(runner)
	return nil
}
