package commands

import (
	"fmt"
	"sort"

	"github.com/ncsh/ncsh/core/vm"
	"github.com/ncsh/ncsh/core/vos"
)

// Entry is a builtin registered under one or more names.
type Entry struct {
	Names []string
	Short string
	Proc  vos.ProcessFunc
}

// Registry holds the builtins the shell runs in-process.
type Registry struct {
	byName  map[string]*Entry
	entries []*Entry
}

var _ vm.Builtins = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Entry)}
}

// MustAdd registers proc under every name, it panics if a name is taken.
func (r *Registry) MustAdd(names []string, short string, proc vos.ProcessFunc) {
	entry := &Entry{Names: names, Short: short, Proc: proc}
	for _, name := range names {
		if _, ok := r.byName[name]; ok {
			panic(fmt.Sprintf("builtin %q registered twice", name))
		}
		r.byName[name] = entry
	}
	r.entries = append(r.entries, entry)
}

// Lookup implements vm.Builtins.
func (r *Registry) Lookup(name string) (vos.ProcessFunc, bool) {
	entry, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return entry.Proc, true
}

// List returns the registered builtins sorted by their first name.
func (r *Registry) List() []*Entry {
	out := append([]*Entry(nil), r.entries...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Names[0] < out[j].Names[0]
	})
	return out
}

// Session holds the state builtins share with the interactive shell.
type Session struct {
	Aliases *AliasTable
	History *History
}

// NewSession creates a session with no aliases and unlimited history.
func NewSession() *Session {
	return &Session{
		Aliases: NewAliasTable(),
		History: NewHistory(0),
	}
}

// NewDefaultRegistry registers every builtin.
func NewDefaultRegistry(s *Session) *Registry {
	r := NewRegistry()
	r.MustAdd([]string{"cd"}, "Change the shell working directory.", Cd)
	r.MustAdd([]string{"pwd"}, "Print the name of the current working directory.", Pwd)
	r.MustAdd([]string{"echo"}, "Display a line of text.", Echo)
	r.MustAdd([]string{"export"}, "Set environment variables.", Export)
	r.MustAdd([]string{"unset"}, "Unset environment variables.", Unset)
	r.MustAdd([]string{"alias"}, "Define or display aliases.", s.Aliases.Alias)
	r.MustAdd([]string{"unalias"}, "Remove aliases.", s.Aliases.Unalias)
	r.MustAdd([]string{"history"}, "Display or clear the history list.", s.History.Builtin)
	r.MustAdd([]string{"exit", "quit", "q"}, "Exit the shell.", Exit)
	r.MustAdd([]string{"kill"}, "Send a signal to a process.", Kill)
	r.MustAdd([]string{"which"}, "Locate a command.", Which(r))
	r.MustAdd([]string{"version"}, "Print the shell version.", Version)
	r.MustAdd([]string{"help"}, "Display information about builtin commands.", Help(r))

	for i := range noOpBuiltins {
		cmd := noOpBuiltins[i]
		r.MustAdd(cmd.Names, cmd.Short, cmd.ToCommand())
	}
	return r
}
