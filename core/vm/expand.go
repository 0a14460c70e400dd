package vm

import (
	"strconv"

	"github.com/ncsh/ncsh/core/arena"
	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

// params is the environment seen by expansions: the OS environment plus the
// special parameters $? and $$.
type params struct {
	vos.VOS
	status int
}

func (p params) Getenv(key string) string {
	switch key {
	case "?":
		return strconv.Itoa(p.status)
	case "$":
		return strconv.Itoa(p.Getpid())
	}
	return p.VOS.Getenv(key)
}

// expander expands words against the VM's OS as it is right now.
func (m *VM) expander() *shell.Expander {
	sys := m.sys
	return &shell.Expander{
		Env: params{VOS: sys, status: m.status},
		Fs:  sys,
		Dir: func() string {
			wd, _ := sys.Getwd()
			return wd
		},
	}
}

// assignment is a NAME=value prefix of a command.
type assignment struct {
	name  string
	value string
}

// resolve expands a command and copies it out of the arena.
func (m *VM) resolve(a *arena.Arena, c *shell.Command) (command, error) {
	e := m.expander()

	var cmd command
	for _, w := range c.Words {
		cmd.argv = append(cmd.argv, e.Fields(a, w)...)
	}
	for _, r := range c.Redirects {
		target, err := e.Target(a, r.Target)
		if err != nil {
			return command{}, err
		}
		cmd.redirects = append(cmd.redirects, redirect{
			mode:   r.Mode,
			stream: r.Stream,
			target: target,
		})
	}
	for _, as := range c.Assigns {
		cmd.assigns = append(cmd.assigns, assignment{
			name:  a.String(as.Name),
			value: e.Value(a, as.Value),
		})
	}
	return cmd, nil
}

func (m *VM) resolveAll(a *arena.Arena, cmds []*shell.Command) ([]command, error) {
	out := make([]command, len(cmds))
	for i, c := range cmds {
		cmd, err := m.resolve(a, c)
		if err != nil {
			return nil, err
		}
		out[i] = cmd
	}
	return out, nil
}
