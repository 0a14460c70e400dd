// Package core ties the lexer, parser and VM together into an interpreter
// that runs one line at a time.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
	"github.com/ncsh/ncsh/core/arena"
	"github.com/ncsh/ncsh/core/logger"
	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vm"
	"github.com/ncsh/ncsh/core/vos"
)

const (
	// DefaultArenaCapacity is the arena size used when none is configured.
	DefaultArenaCapacity = 64 * 1024

	// StatusUsage is returned for lines with a syntax error.
	StatusUsage = 2
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithAliases sets the aliases expanded while parsing.
func WithAliases(aliases shell.Aliases) Option {
	return func(i *Interpreter) {
		i.aliases = aliases
	}
}

// WithArenaCapacity sets the number of bytes available to a single line.
func WithArenaCapacity(capacity int) Option {
	return func(i *Interpreter) {
		i.capacity = capacity
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) {
		i.log = l
	}
}

// WithEventRecorder sets where events are recorded.
func WithEventRecorder(r vm.EventRecorder) Option {
	return func(i *Interpreter) {
		i.events = r
	}
}

// WithColor enables or disables colored error messages.
func WithColor(enabled bool) Option {
	return func(i *Interpreter) {
		i.color = enabled
	}
}

// Interpreter runs lines against a VOS. The arena is created once and reset
// before every line.
type Interpreter struct {
	sys      vos.VOS
	aliases  shell.Aliases
	capacity int
	log      *log.Logger
	events   vm.EventRecorder
	color    bool

	arena  *arena.Arena
	parser *shell.Parser
	vm     *vm.VM
}

// NewInterpreter creates an interpreter, builtins may be nil.
func NewInterpreter(sys vos.VOS, builtins vm.Builtins, opts ...Option) (*Interpreter, error) {
	i := &Interpreter{
		sys:      sys,
		capacity: DefaultArenaCapacity,
		log:      log.New(io.Discard, "", 0),
		events:   logger.NewNopLogger().Sessionless(),
	}
	for _, opt := range opts {
		opt(i)
	}

	a, err := arena.New(i.capacity)
	if err != nil {
		return nil, fmt.Errorf("creating arena: %w", err)
	}
	i.arena = a

	var parserOpts []shell.ParserOption
	if i.aliases != nil {
		parserOpts = append(parserOpts, shell.WithAliases(i.aliases))
	}
	i.parser = shell.NewParser(a, parserOpts...)

	i.vm = vm.New(sys, builtins, vm.WithLogger(i.log), vm.WithEventRecorder(i.events))
	return i, nil
}

// Run executes a line and returns its status, which becomes $?. Errors in
// the line are printed to stderr and returned, they never stop the
// interpreter.
func (i *Interpreter) Run(ctx context.Context, line string) (int, error) {
	i.arena.Reset()

	stmts, err := i.parse(line)
	if err != nil {
		i.printError(err)
		status := errorStatus(err)
		i.vm.SetStatus(status)
		if recErr := i.events.Record(&logger.SyntaxError{Line: line, Error: err.Error()}); recErr != nil {
			i.log.Printf("couldn't record event: %v", recErr)
		}
		return status, err
	}

	if stmts.Len() == 0 {
		return i.vm.Status(), nil
	}

	i.log.Printf("running %q", stmts.String())
	return i.vm.Execute(ctx, stmts), nil
}

func (i *Interpreter) parse(line string) (*shell.Statements, error) {
	tokens, err := shell.Tokenize(i.arena, line)
	if err != nil {
		return nil, err
	}
	return i.parser.Parse(tokens)
}

// Status returns the status of the last line.
func (i *Interpreter) Status() int {
	return i.vm.Status()
}

// Wait blocks until all background statements have finished.
func (i *Interpreter) Wait() {
	i.vm.Wait()
}

// Close releases the arena, the interpreter can't be used afterwards.
func (i *Interpreter) Close() error {
	i.arena.Release()
	return nil
}

func (i *Interpreter) printError(err error) {
	c := color.New(color.FgRed)
	if i.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintf(i.sys.Stderr(), "ncsh: %v\n", err)
}

func errorStatus(err error) int {
	if errors.Is(err, shell.ErrSyntax) {
		return StatusUsage
	}
	return vm.StatusFailure
}
