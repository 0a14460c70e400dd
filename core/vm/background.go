package vm

import (
	"context"
	"fmt"

	"github.com/ncsh/ncsh/core/arena"
	"github.com/ncsh/ncsh/core/logger"
	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

// minJobArena is the smallest arena used to re-parse a background statement.
const minJobArena = 1024

// background starts stmt without waiting for it. Background jobs read from
// /dev/null unless they redirect stdin and keep running if ctx is canceled.
func (m *VM) background(ctx context.Context, a *arena.Arena, stmt shell.Statement) {
	ctx = context.WithoutCancel(ctx)
	text := shell.Format(a, stmt)

	std := m.stdio()
	std.stdin = nil

	var cmds []command
	var err error
	switch s := stmt.(type) {
	case *shell.Command:
		var cmd command
		cmd, err = m.resolve(a, s)
		cmds = []command{cmd}
	case *shell.Pipeline:
		cmds, err = m.resolveAll(a, s.Commands)
	default:
		m.backgroundStatement(ctx, m.jobIDs.Add(1), text, std)
		return
	}
	if err != nil {
		m.fail(err)
		return
	}
	id := m.jobIDs.Add(1)

	g := &group{fork: true, background: true}
	procs, _ := m.startAll(m.sys, cmds, std, g)

	var pids []int
	for _, p := range procs {
		if p.pid != 0 {
			pids = append(pids, p.pid)
		}
	}
	if len(pids) > 0 {
		fmt.Fprintf(std.errOut(), "[%d] %d\n", id, pids[len(pids)-1])
	} else {
		fmt.Fprintf(std.errOut(), "[%d]\n", id)
	}
	m.record(&logger.BackgroundJob{Command: text, Pids: pids})

	m.jobs.Add(1)
	go func() {
		defer m.jobs.Done()

		status := StatusSuccess
		for _, p := range procs {
			status = p.wait(ctx)
		}
		m.log.Printf("job [%d] %q finished with status %d", id, text, status)
		m.record(&logger.BackgroundJob{Command: text, Pids: pids, Finished: true, Status: status})
	}()
}

// backgroundStatement runs a list of commands joined by ;, && or || in a
// goroutine against a copy of the OS. The line's arena is reset before the
// statement finishes so it's parsed again from its formatted text.
func (m *VM) backgroundStatement(ctx context.Context, id int32, text string, std stdio) {
	forked, err := m.sys.StartProcess("ncsh", nil, &vos.ProcAttr{
		Files: vos.NewVIOAdapter(nil, std.stdout, std.stderr),
	})
	if err != nil {
		fmt.Fprintf(std.errOut(), "ncsh: %v\n", err)
		return
	}

	child := *m
	child.sys = forked

	fmt.Fprintf(std.errOut(), "[%d]\n", id)
	m.record(&logger.BackgroundJob{Command: text})

	m.jobs.Add(1)
	go func() {
		defer m.jobs.Done()

		status, err := child.runText(ctx, text)
		if err != nil {
			fmt.Fprintf(std.errOut(), "ncsh: %v\n", err)
		}
		m.log.Printf("job [%d] %q finished with status %d", id, text, status)
		m.record(&logger.BackgroundJob{Command: text, Finished: true, Status: status})
	}()
}

// runText tokenizes, parses and executes a formatted line. Aliases have
// already been replaced.
func (m *VM) runText(ctx context.Context, text string) (int, error) {
	a, err := arena.New(max(minJobArena, 4*len(text)))
	if err != nil {
		return StatusFailure, err
	}
	defer a.Release()

	tokens, err := shell.Tokenize(a, text)
	if err != nil {
		return StatusFailure, err
	}
	stmts, err := shell.NewParser(a).Parse(tokens)
	if err != nil {
		return StatusFailure, err
	}
	return m.Execute(ctx, stmts), nil
}
