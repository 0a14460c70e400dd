// Package vm executes parsed statements. Builtins run in-process against the
// shell's VOS, everything else is started as a child process of the shell.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ncsh/ncsh/core/arena"
	"github.com/ncsh/ncsh/core/logger"
	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

// Exit statuses reported by the VM itself.
const (
	StatusSuccess = 0
	StatusFailure = 1
	// StatusNotExecutable is reported when a program was found but couldn't be
	// started.
	StatusNotExecutable = 126
	// StatusNotFound is reported when no builtin or program has the name.
	StatusNotFound = 127
	// StatusSignaled is added to the signal number of a killed child.
	StatusSignaled = 128
	// StatusCanceled is reported when the context is done before a statement
	// could run.
	StatusCanceled = StatusSignaled + 2
)

// ErrCommandNotFound is reported when a name isn't a builtin and isn't on the
// PATH.
var ErrCommandNotFound = errors.New("command not found")

// Builtins looks up commands that run inside the shell.
type Builtins interface {
	Lookup(name string) (vos.ProcessFunc, bool)
}

// EventRecorder receives an event for every command the VM runs.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// Option configures a VM.
type Option func(*VM)

// WithLogger sets the debug logger, output is discarded by default.
func WithLogger(l *log.Logger) Option {
	return func(m *VM) {
		m.log = l
	}
}

// WithEventRecorder sets where command events are recorded.
func WithEventRecorder(r EventRecorder) Option {
	return func(m *VM) {
		m.events = r
	}
}

// VM runs statements against a VOS.
type VM struct {
	sys      vos.VOS
	builtins Builtins
	log      *log.Logger
	events   EventRecorder

	// status is the status of the last statement, $? when expanding.
	status int

	// Shared with the VMs running background statements.
	jobs   *sync.WaitGroup
	jobIDs *atomic.Int32
}

// New creates a VM, builtins may be nil.
func New(sys vos.VOS, builtins Builtins, opts ...Option) *VM {
	if builtins == nil {
		builtins = noBuiltins{}
	}

	m := &VM{
		sys:      sys,
		builtins: builtins,
		log:      log.New(io.Discard, "", 0),
		events:   nopRecorder{},
		jobs:     &sync.WaitGroup{},
		jobIDs:   &atomic.Int32{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs every statement in order and returns the status of the last
// one. The context is checked before each statement and cancels foreground
// children.
func (m *VM) Execute(ctx context.Context, stmts *shell.Statements) int {
	status := StatusSuccess
	for _, stmt := range stmts.List {
		status = m.exec(ctx, stmts.Arena, stmt)
	}
	return status
}

// Status returns the status of the last statement run.
func (m *VM) Status() int {
	return m.status
}

// SetStatus sets the status $? expands to, for failures outside the VM such
// as syntax errors.
func (m *VM) SetStatus(status int) {
	m.status = status
}

// Wait blocks until every background statement has finished.
func (m *VM) Wait() {
	m.jobs.Wait()
}

// exec runs stmt and records its status as $?. Words are expanded just
// before the command they belong to starts.
func (m *VM) exec(ctx context.Context, a *arena.Arena, stmt shell.Statement) int {
	m.status = m.statement(ctx, a, stmt)
	return m.status
}

func (m *VM) statement(ctx context.Context, a *arena.Arena, stmt shell.Statement) int {
	if ctx.Err() != nil {
		return StatusCanceled
	}

	switch s := stmt.(type) {
	case *shell.Command:
		cmd, err := m.resolve(a, s)
		if err != nil {
			return m.fail(err)
		}
		return m.run(ctx, []command{cmd})

	case *shell.Pipeline:
		cmds, err := m.resolveAll(a, s.Commands)
		if err != nil {
			return m.fail(err)
		}
		return m.run(ctx, cmds)

	case *shell.Sequence:
		m.exec(ctx, a, s.Left)
		return m.exec(ctx, a, s.Right)

	case *shell.And:
		if status := m.exec(ctx, a, s.Left); status != StatusSuccess {
			return status
		}
		return m.exec(ctx, a, s.Right)

	case *shell.Or:
		if status := m.exec(ctx, a, s.Left); status == StatusSuccess {
			return status
		}
		return m.exec(ctx, a, s.Right)

	case *shell.Background:
		m.background(ctx, a, s.Inner)
		return StatusSuccess
	}

	panic(fmt.Sprintf("vm: unknown statement type %T", stmt))
}

// run starts the commands as a pipeline in the foreground and waits for
// them.
func (m *VM) run(ctx context.Context, cmds []command) int {
	g := &group{fork: len(cmds) > 1}
	procs, err := m.startAll(m.sys, cmds, m.stdio(), g)

	status := StatusSuccess
	for _, p := range procs {
		status = p.wait(ctx)
	}
	if err != nil {
		return StatusFailure
	}
	return status
}

// fail reports an error that stopped a statement from starting.
func (m *VM) fail(err error) int {
	fmt.Fprintf(m.stdio().errOut(), "ncsh: %v\n", err)
	return StatusFailure
}

// stdio returns the streams commands inherit from the shell.
func (m *VM) stdio() stdio {
	return stdio{
		stdin:  vos.Reader(m.sys.Stdin()),
		stdout: vos.Writer(m.sys.Stdout()),
		stderr: vos.Writer(m.sys.Stderr()),
	}
}

func (m *VM) record(event logger.LogType) {
	if err := m.events.Record(event); err != nil {
		m.log.Printf("couldn't record event: %v", err)
	}
}

type noBuiltins struct{}

func (noBuiltins) Lookup(string) (vos.ProcessFunc, bool) {
	return nil, false
}

type nopRecorder struct{}

func (nopRecorder) Record(logger.LogType) error {
	return nil
}
