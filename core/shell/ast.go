package shell

import (
	"strings"

	"github.com/ncsh/ncsh/core/arena"
)

// Statement is a node of a parsed line. It's one of *Command, *Pipeline,
// *Sequence, *And, *Or or *Background.
type Statement interface {
	format(a *arena.Arena, b *strings.Builder)
}

// Mode is how a redirection opens its target.
type Mode uint8

const (
	// In opens the target for reading.
	In Mode = iota
	// Out truncates or creates the target.
	Out
	// Append creates the target or appends to it.
	Append
)

// Stream is the standard stream a redirection replaces.
type Stream uint8

const (
	Stdin Stream = iota
	Stdout
	Stderr
	// StdoutStderr sends both output streams to the same target.
	StdoutStderr
)

// Redirection replaces one of a command's standard streams with a file.
type Redirection struct {
	Mode   Mode
	Stream Stream
	// Target is expanded when the command runs and must yield one field.
	Target Token
}

// Operator returns the operator the redirection was written with.
func (r Redirection) Operator() string {
	switch r.Stream {
	case Stdin:
		return "<"
	case Stderr:
		if r.Mode == Append {
			return "2>>"
		}
		return "2>"
	case StdoutStderr:
		if r.Mode == Append {
			return "&>>"
		}
		return "&>"
	}
	if r.Mode == Append {
		return ">>"
	}
	return ">"
}

// Assignment sets a shell variable, NAME=value.
type Assignment struct {
	Name  arena.Span
	Value Token
}

// Command is a simple command: a program and its arguments. Words are kept
// unexpanded until the command runs. A command has at least one word or
// assignment.
type Command struct {
	Assigns []Assignment
	Words   []Token
	// Redirects are applied in order, later ones override earlier ones for
	// the same stream.
	Redirects []Redirection
}

// Pipeline connects the standard output of each command to the standard input
// of the next. It always has at least two commands.
type Pipeline struct {
	Commands []*Command
}

// Sequence runs Left then Right.
type Sequence struct {
	Left, Right Statement
}

// And runs Right only if Left succeeds.
type And struct {
	Left, Right Statement
}

// Or runs Right only if Left fails.
type Or struct {
	Left, Right Statement
}

// Background runs Inner without waiting for it.
type Background struct {
	Inner Statement
}

var (
	_ Statement = (*Command)(nil)
	_ Statement = (*Pipeline)(nil)
	_ Statement = (*Sequence)(nil)
	_ Statement = (*And)(nil)
	_ Statement = (*Or)(nil)
	_ Statement = (*Background)(nil)
)

// Statements is the result of parsing one line.
type Statements struct {
	// Arena owns the text referenced by the tree.
	Arena *arena.Arena
	List  []Statement
}

// Len returns the number of top level statements.
func (s *Statements) Len() int {
	return len(s.List)
}

// Cap returns the number of top level statements space is reserved for.
func (s *Statements) Cap() int {
	return cap(s.List)
}

// String formats the statements as a line that parses to the same tree.
func (s *Statements) String() string {
	var b strings.Builder
	for i, stmt := range s.List {
		if i > 0 {
			b.WriteByte(' ')
		}
		stmt.format(s.Arena, &b)
	}
	return b.String()
}

// Format formats a single statement.
func Format(a *arena.Arena, stmt Statement) string {
	var b strings.Builder
	stmt.format(a, &b)
	return b.String()
}

func (c *Command) format(a *arena.Arena, b *strings.Builder) {
	sep := ""
	for _, as := range c.Assigns {
		b.WriteString(sep)
		b.WriteString(a.String(as.Name))
		b.WriteByte('=')
		b.WriteString(formatWord(a, as.Value, false))
		sep = " "
	}
	for i, w := range c.Words {
		b.WriteString(sep)
		b.WriteString(formatWord(a, w, i == 0))
		sep = " "
	}
	for _, r := range c.Redirects {
		b.WriteString(sep)
		b.WriteString(r.Operator())
		b.WriteByte(' ')
		b.WriteString(formatWord(a, r.Target, false))
		sep = " "
	}
}

func (p *Pipeline) format(a *arena.Arena, b *strings.Builder) {
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteString(" | ")
		}
		c.format(a, b)
	}
}

func (s *Sequence) format(a *arena.Arena, b *strings.Builder) {
	s.Left.format(a, b)
	b.WriteString("; ")
	s.Right.format(a, b)
}

func (s *And) format(a *arena.Arena, b *strings.Builder) {
	s.Left.format(a, b)
	b.WriteString(" && ")
	s.Right.format(a, b)
}

func (s *Or) format(a *arena.Arena, b *strings.Builder) {
	s.Left.format(a, b)
	b.WriteString(" || ")
	s.Right.format(a, b)
}

func (s *Background) format(a *arena.Arena, b *strings.Builder) {
	s.Inner.format(a, b)
	b.WriteString(" &")
}

// formatWord writes a word so it tokenizes back to the same text and quoting.
// Words with nothing left to expand are quoted with QuoteWord. The "=" in the
// first word of a command is quoted so it isn't read back as an assignment.
func formatWord(a *arena.Arena, tok Token, first bool) string {
	text := a.Bytes(tok.Text)
	quote := a.Bytes(tok.Quote)
	if !expandable(text, quote) {
		s := string(text)
		if eq := strings.IndexByte(s, '='); first && eq > 0 && validName(s[:eq]) {
			return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
		}
		return QuoteWord(s)
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		j := i
		for j < len(text) && quote[j] == quote[i] {
			j++
		}
		run := string(text[i:j])

		switch quote[i] {
		case Unquoted:
			for k := 0; k < len(run); k++ {
				c := run[k]
				if strings.IndexByte(" \t\n\"'\\&|;<>", c) >= 0 || c == '#' && i+k == 0 || c == '=' && first {
					b.WriteByte('\\')
				}
				b.WriteByte(c)
			}
		case DoubleQuoted:
			b.WriteByte('"')
			for k := 0; k < len(run); k++ {
				if c := run[k]; c == '"' || c == '\\' {
					b.WriteByte('\\')
				}
				b.WriteByte(run[k])
			}
			b.WriteByte('"')
		default:
			b.WriteString("'" + strings.ReplaceAll(run, "'", `'\''`) + "'")
		}
		i = j
	}
	return b.String()
}

// expandable returns true if the word has bytes the Expander would replace.
func expandable(text, quote []byte) bool {
	for i, c := range text {
		switch {
		case c == '$' && quote[i] != Literal:
			return true
		case quote[i] != Unquoted:
		case c == '~' && i == 0, c == '*', c == '?', c == '[':
			return true
		}
	}
	return false
}

// QuoteWord quotes s so it tokenizes back to a single word with no
// expansion.
func QuoteWord(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$~*?[]#&|;<>") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
