package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/anmitsu/go-shlex"
	"github.com/ncsh/ncsh/core/shell"
	"github.com/ncsh/ncsh/core/vos"
)

// AliasTable holds the shell's aliases, it's safe for concurrent use.
type AliasTable struct {
	mu      sync.RWMutex
	aliases map[string]string
}

var _ shell.Aliases = (*AliasTable)(nil)

// NewAliasTable creates an empty table.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string]string)}
}

// Set defines an alias, the value must split into words like a command line.
func (t *AliasTable) Set(name, value string) error {
	if name == "" || strings.ContainsAny(name, " \t\n=/$'\"\\") {
		return fmt.Errorf("%q: invalid alias name", name)
	}
	if _, err := shlex.Split(value, true); err != nil {
		return fmt.Errorf("%s: invalid value: %w", name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.aliases[name] = value
	return nil
}

// LookupAlias implements shell.Aliases.
func (t *AliasTable) LookupAlias(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.aliases[name]
	return value, ok
}

// Remove deletes an alias and reports whether it existed.
func (t *AliasTable) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.aliases[name]
	delete(t.aliases, name)
	return ok
}

// Clear deletes every alias.
func (t *AliasTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.aliases)
}

// Names returns the sorted alias names.
func (t *AliasTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var names []string
	for name := range t.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *AliasTable) print(virtOS vos.VOS, name string) bool {
	value, ok := t.LookupAlias(name)
	if ok {
		fmt.Fprintf(virtOS.Stdout(), "alias %s=%s\n", name, shell.QuoteWord(value))
	}
	return ok
}

// Alias implements the alias builtin.
func (t *AliasTable) Alias(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "alias [NAME[=VALUE] ...]",
		Short: "Define or display aliases.",
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			for _, name := range t.Names() {
				t.print(virtOS, name)
			}
			return 0
		}

		ret := 0
		for _, arg := range args {
			name, value, hasValue := strings.Cut(arg, "=")
			if !hasValue {
				if !t.print(virtOS, name) {
					fmt.Fprintf(virtOS.Stderr(), "alias: %s: not found\n", name)
					ret = 1
				}
				continue
			}

			if err := t.Set(name, value); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "alias: %v\n", err)
				ret = 1
			}
		}
		return ret
	})
}

// Unalias implements the unalias builtin.
func (t *AliasTable) Unalias(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "unalias [-a] NAME [NAME ...]",
		Short: "Remove aliases.",
	}
	all := cmd.Flags().Bool('a', "remove all aliases")

	return cmd.Run(virtOS, func() int {
		if *all {
			t.Clear()
			return 0
		}

		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintf(virtOS.Stderr(), "usage: %s\n", cmd.Use)
			return 2
		}

		ret := 0
		for _, name := range args {
			if !t.Remove(name) {
				fmt.Fprintf(virtOS.Stderr(), "unalias: %s: not found\n", name)
				ret = 1
			}
		}
		return ret
	})
}
