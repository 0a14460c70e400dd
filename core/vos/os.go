package vos

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"
)

// procState is shared by an OS and every view returned by Invoke.
type procState struct {
	mu     sync.RWMutex
	dir    string
	pid    int
	onExit func(code int)
}

// OS implements VOS on top of a base filesystem. The working directory is
// tracked by the OS rather than the host process so relative paths are
// resolved against it by the VFS.
type OS struct {
	VEnv
	VFS
	VIO

	base  VFS
	state *procState
	args  []string
}

var _ VOS = (*OS)(nil)

// New creates an OS whose working directory is dir.
func New(base VFS, env VEnv, files VIO, dir string) *OS {
	if files == nil {
		files = NewNullIO()
	}

	state := &procState{dir: path.Clean(dir), pid: os.Getpid()}
	return &OS{
		VEnv:  env,
		VFS:   newStateFs(base, state),
		VIO:   files,
		base:  base,
		state: state,
	}
}

// NewHostOS creates an OS backed by the host filesystem, environment and
// standard streams.
func NewHostOS() (*OS, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return New(afero.NewOsFs(), NewHostEnv(), NewHostIO(), wd), nil
}

func newStateFs(base VFS, state *procState) VFS {
	return NewRelativeFs(base, func() string {
		state.mu.RLock()
		defer state.mu.RUnlock()
		return state.dir
	})
}

// SetExitHandler sets the function called when a builtin asks the shell to
// exit.
func (o *OS) SetExitHandler(handler func(code int)) {
	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	o.state.onExit = handler
}

// Args implements VOS.Args.
func (o *OS) Args() []string {
	return o.args
}

// Getpid implements VOS.Getpid.
func (o *OS) Getpid() int {
	return o.state.pid
}

// Getwd implements VOS.Getwd.
func (o *OS) Getwd() (dir string, err error) {
	o.state.mu.RLock()
	defer o.state.mu.RUnlock()
	return o.state.dir, nil
}

// Chdir implements VOS.Chdir.
func (o *OS) Chdir(dir string) (err error) {
	wd, _ := o.Getwd()
	if !path.IsAbs(dir) {
		dir = path.Join(wd, dir)
	}
	dir = path.Clean(dir)

	stat, err := o.base.Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", dir, err)
	case !stat.IsDir():
		return fmt.Errorf("%s: Not a directory", dir)
	}

	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	o.state.dir = dir
	return nil
}

// Exit implements VOS.Exit.
func (o *OS) Exit(code int) {
	o.state.mu.RLock()
	handler := o.state.onExit
	o.state.mu.RUnlock()

	if handler != nil {
		handler(code)
	}
}

// LstatIfPossible implements afero.Lstater.
func (o *OS) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if lstater, ok := o.VFS.(afero.Lstater); ok {
		return lstater.LstatIfPossible(name)
	}
	fi, err := o.VFS.Stat(name)
	return fi, false, err
}

// ReadlinkIfPossible implements afero.LinkReader.
func (o *OS) ReadlinkIfPossible(name string) (string, error) {
	if reader, ok := o.VFS.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: FsOpReadlink, Path: name, Err: afero.ErrNoReadlink}
}

// Invoke implements VOS.Invoke.
func (o *OS) Invoke(argv []string, files VIO) VOS {
	if files == nil {
		files = o.VIO
	}

	out := *o
	out.args = argv
	out.VIO = files
	return &out
}

// StartProcess implements VOS.StartProcess.
func (o *OS) StartProcess(name string, argv []string, attr *ProcAttr) (VOS, error) {
	if attr == nil {
		attr = &ProcAttr{}
	}

	if argv == nil {
		argv = []string{name}
	}

	var env VEnv
	if attr.Env == nil {
		env = NewMapEnvFrom(o.VEnv)
	} else {
		env = NewMapEnvFrom(EnvironList(attr.Env))
	}

	files := attr.Files
	if files == nil {
		files = NewNullIO()
	}

	wd, _ := o.Getwd()
	state := &procState{dir: wd, pid: o.state.pid}
	out := &OS{
		VEnv:  env,
		VFS:   newStateFs(o.base, state),
		VIO:   files,
		base:  o.base,
		state: state,
		args:  argv,
	}

	if attr.Dir != "" {
		if err := out.Chdir(attr.Dir); err != nil {
			return nil, err
		}
	}

	return out, nil
}
