package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/ncsh/ncsh/core/logger"
	"github.com/ncsh/ncsh/core/vos"
)

// command is a simple command with its text expanded and copied out of the
// arena so it outlives the line it was parsed from.
type command struct {
	argv      []string
	redirects []redirect
	assigns   []assignment
}

// environ returns the environment of a program run with the command's
// assignments. Later entries override earlier ones.
func (c command) environ(base []string) []string {
	env := slices.Clip(base)
	for _, as := range c.assigns {
		env = append(env, as.name+"="+as.value)
	}
	return env
}

// group describes how the members of a pipeline are started.
type group struct {
	// fork runs builtins against a copy of the OS so they can't change the
	// shell's environment or working directory.
	fork bool
	// background puts programs in their own process group.
	background bool
	// pgid is the process group of a background pipeline, set by its first
	// program.
	pgid int
}

// process is a started builtin or program.
type process struct {
	argv []string
	pid  int
	kill func()

	done   chan struct{}
	status int
}

func (p *process) finish(status int, closers []io.Closer) *process {
	closeAll(closers)
	p.status = status
	close(p.done)
	return p
}

// wait blocks until the process finishes, killing it if ctx is done first.
func (p *process) wait(ctx context.Context) int {
	select {
	case <-p.done:
	case <-ctx.Done():
		if p.kill != nil {
			p.kill()
		}
		<-p.done
	}
	return p.status
}

// startAll connects the commands with pipes and starts every one of them
// before returning. If a pipe can't be created the commands started so far
// are returned along with the error.
func (m *VM) startAll(sys vos.VOS, cmds []command, std stdio, g *group) ([]*process, error) {
	procs := make([]*process, 0, len(cmds))

	stdin := std.stdin
	var readEnd []io.Closer
	for i, cmd := range cmds {
		cmdStd := stdio{stdin: stdin, stdout: std.stdout, stderr: std.stderr}
		owned := readEnd
		readEnd = nil

		if i < len(cmds)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				closeAll(owned)
				fmt.Fprintf(std.errOut(), "ncsh: %v\n", err)
				return procs, err
			}
			cmdStd.stdout = w
			owned = append(owned, w)
			stdin = r
			readEnd = []io.Closer{r}
		}

		procs = append(procs, m.start(sys, cmd, cmdStd, owned, g))
	}
	return procs, nil
}

// start runs a single command. The owned streams are closed once the command
// finishes.
func (m *VM) start(sys vos.VOS, cmd command, std stdio, owned []io.Closer, g *group) *process {
	p := &process{argv: cmd.argv, done: make(chan struct{})}

	files, err := openRedirects(sys, cmd.redirects, &std)
	if err != nil {
		fmt.Fprintf(std.errOut(), "ncsh: %v\n", err)
		return p.finish(StatusFailure, owned)
	}
	owned = append(owned, files...)

	if len(cmd.argv) == 0 {
		return p.finish(m.assign(sys, cmd.assigns, std, g), owned)
	}

	name := cmd.argv[0]
	if fn, ok := m.builtins.Lookup(name); ok {
		m.startBuiltin(sys, p, fn, cmd, std, owned, g)
		return p
	}

	path, err := vos.LookPath(sys, name)
	switch {
	case errors.Is(err, vos.ErrNotFound):
		fmt.Fprintf(std.errOut(), "ncsh: %s: %v\n", name, ErrCommandNotFound)
		m.record(&logger.UnknownCommand{Command: cmd.argv, ErrorMessage: ErrCommandNotFound.Error()})
		return p.finish(StatusNotFound, owned)
	case errors.Is(err, fs.ErrPermission):
		fmt.Fprintf(std.errOut(), "ncsh: %s: Permission denied\n", name)
		return p.finish(StatusNotExecutable, owned)
	case err != nil:
		fmt.Fprintf(std.errOut(), "ncsh: %s: %v\n", name, err)
		return p.finish(StatusNotExecutable, owned)
	}

	m.startProgram(sys, p, path, cmd, std, owned, g)
	return p
}

// assign sets the variables of a command that has no words. Pipeline members
// run against a copy of the OS so their assignments are lost.
func (m *VM) assign(sys vos.VOS, assigns []assignment, std stdio, g *group) int {
	if g.fork {
		return StatusSuccess
	}
	for _, as := range assigns {
		if err := sys.Setenv(as.name, as.value); err != nil {
			fmt.Fprintf(std.errOut(), "ncsh: %s: %v\n", as.name, err)
			return StatusFailure
		}
		m.log.Printf("set %s=%q", as.name, as.value)
	}
	return StatusSuccess
}

// startBuiltin runs fn in a goroutine. Builtins with assignments run against
// a copy of the OS holding them.
func (m *VM) startBuiltin(sys vos.VOS, p *process, fn vos.ProcessFunc, cmd command, std stdio, owned []io.Closer, g *group) {
	files := vos.NewVIOAdapter(std.stdin, std.stdout, std.stderr)

	var view vos.VOS
	if g.fork || len(cmd.assigns) > 0 {
		attr := &vos.ProcAttr{Files: files}
		if len(cmd.assigns) > 0 {
			attr.Env = cmd.environ(sys.Environ())
		}
		forked, err := sys.StartProcess(p.argv[0], p.argv, attr)
		if err != nil {
			fmt.Fprintf(std.errOut(), "ncsh: %s: %v\n", p.argv[0], err)
			p.finish(StatusFailure, owned)
			return
		}
		view = forked
	} else {
		view = sys.Invoke(p.argv, files)
	}

	m.log.Printf("builtin %q", p.argv)
	go func() {
		status := StatusFailure
		defer func() {
			if r := recover(); r != nil {
				m.log.Printf("builtin %s panicked: %v", p.argv[0], r)
				fmt.Fprintf(std.errOut(), "ncsh: %s: internal error\n", p.argv[0])
			}
			m.record(&logger.RunCommand{Command: p.argv, Builtin: true, Status: status})
			p.finish(status, owned)
		}()

		status = fn(view)
	}()
}

func (m *VM) startProgram(sys vos.VOS, p *process, path string, cmd command, std stdio, owned []io.Closer, g *group) {
	wd, _ := sys.Getwd()
	if !filepath.IsAbs(path) {
		path = filepath.Join(wd, path)
	}

	c := &exec.Cmd{
		Path:   path,
		Args:   p.argv,
		Env:    cmd.environ(sys.Environ()),
		Dir:    wd,
		Stdin:  std.stdin,
		Stdout: std.stdout,
		Stderr: std.stderr,
	}
	if g.background {
		c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: g.pgid}
	}

	if err := c.Start(); err != nil {
		fmt.Fprintf(std.errOut(), "ncsh: %s: %v\n", p.argv[0], err)
		m.record(&logger.RunCommand{Command: p.argv, ResolvedCommandPath: path, Status: StatusNotExecutable})
		p.finish(StatusNotExecutable, owned)
		return
	}

	p.pid = c.Process.Pid
	p.kill = func() { c.Process.Kill() }
	if g.background && g.pgid == 0 {
		g.pgid = p.pid
	}
	m.log.Printf("started %s pid %d", path, p.pid)

	go func() {
		err := c.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			m.log.Printf("wait %s: %v", path, err)
		}

		status := exitStatus(c.ProcessState)
		m.record(&logger.RunCommand{Command: p.argv, ResolvedCommandPath: path, Status: status})
		p.finish(status, owned)
	}()
}

// exitStatus converts a finished process to a shell status, children killed
// by a signal report 128+signal.
func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return StatusFailure
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return StatusSignaled + int(ws.Signal())
	}
	return state.ExitCode()
}
