package shell

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ncsh/ncsh/core/arena"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/pattern"
)

// ErrAmbiguousRedirect is returned when a redirection target doesn't expand
// to exactly one word.
var ErrAmbiguousRedirect = errors.New("ambiguous redirect")

// Env is the part of the environment the Expander reads.
type Env interface {
	// Getenv returns the value of the variable, or "" if it's unset.
	Getenv(key string) string
	// UserHomeDir returns the directory "~" expands to.
	UserHomeDir() (string, error)
}

// Expander performs parameter, tilde and pathname expansion on words.
type Expander struct {
	Env Env
	// Fs is searched for pathname expansion, nil disables it.
	Fs afero.Fs
	// Dir returns the directory relative patterns are matched in.
	Dir func() string
}

// Fields expands a Word token into fields. Unquoted expansions that are
// empty produce no field, so a word may expand to nothing.
func (e *Expander) Fields(a *arena.Arena, tok Token) []string {
	if tok.Len == 0 {
		// Only quotes, e.g. "" or ''.
		return []string{""}
	}

	var fields []string
	for _, f := range e.split(a.Bytes(tok.Text), a.Bytes(tok.Quote), true) {
		fields = append(fields, e.glob(f)...)
	}
	return fields
}

// Value expands the value of an assignment. It's never split or globbed.
func (e *Expander) Value(a *arena.Arena, tok Token) string {
	fields := e.split(a.Bytes(tok.Text), a.Bytes(tok.Quote), false)
	if len(fields) == 0 {
		return ""
	}
	return string(fields[0].text)
}

// Target expands a redirection target, which must be a single field.
func (e *Expander) Target(a *arena.Arena, tok Token) (string, error) {
	fields := e.Fields(a, tok)
	if len(fields) != 1 {
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRedirect, tok.Literal(a))
	}
	return fields[0], nil
}

// field is a word under construction. Bytes where meta is set may be
// interpreted as pattern characters. A quoted field is kept even when empty.
type field struct {
	text   []byte
	meta   []bool
	quoted bool
}

func (f *field) add(s string, meta bool) {
	for i := 0; i < len(s); i++ {
		f.text = append(f.text, s[i])
		f.meta = append(f.meta, meta)
	}
}

// split performs tilde and parameter expansion then, if splitting, splits
// the unquoted results of parameter expansion on whitespace.
func (e *Expander) split(text, quote []byte, splitting bool) []*field {
	var fields []*field
	cur := &field{quoted: !splitting}
	end := func() {
		if len(cur.text) > 0 || cur.quoted {
			fields = append(fields, cur)
		}
		cur = &field{}
	}

	i := 0
	if home, n := e.tilde(text, quote); n > 0 {
		cur.add(home, false)
		i = n
	}

	for i < len(text) {
		c, q := text[i], quote[i]
		if c != '$' || q == Literal {
			cur.add(string(c), q == Unquoted)
			i++
			continue
		}

		value, n := e.parameter(text[i:], quote[i:])
		if n == 0 {
			cur.add("$", false)
			i++
			continue
		}
		i += n

		switch {
		case q == DoubleQuoted:
			cur.add(value, false)
			cur.quoted = true
			continue
		case !splitting:
			cur.add(value, false)
			continue
		}

		// Unquoted results are split into fields but still globbed.
		for j := 0; j < len(value); j++ {
			if isBlank(value[j]) {
				if len(cur.text) > 0 {
					end()
				}
				continue
			}
			cur.add(value[j:j+1], true)
		}
	}

	// "$UNSET" still produces a field, $UNSET doesn't.
	end()
	return fields
}

// tilde expands a leading unquoted "~" alone or followed by "/" and returns
// the replacement and the number of bytes it replaces.
func (e *Expander) tilde(text, quote []byte) (string, int) {
	if len(text) == 0 || text[0] != '~' || quote[0] != Unquoted {
		return "", 0
	}
	if len(text) > 1 && text[1] != '/' {
		return "", 0
	}
	home, err := e.Env.UserHomeDir()
	if err != nil || home == "" {
		return "", 0
	}
	return home, 1
}

// parameter resolves the parameter reference at the start of text, which
// begins with '$'. It returns the number of bytes consumed, zero when the
// '$' doesn't start a reference.
func (e *Expander) parameter(text, quote []byte) (string, int) {
	if len(text) < 2 || quote[1] == Literal {
		return "", 0
	}

	switch text[1] {
	case '?', '$':
		return e.Env.Getenv(string(text[1])), 2
	case '{':
		end := -1
		for j := 2; j < len(text); j++ {
			if text[j] == '}' && quote[j] != Literal {
				end = j
				break
			}
		}
		name := string(text[2:max(end, 2)])
		if end < 0 || !validName(name) && name != "?" && name != "$" {
			return "", 0
		}
		return e.Env.Getenv(name), end + 1
	}

	n := 1
	for n < len(text) && quote[n] != Literal && isNameByte(text[n], n == 1) {
		n++
	}
	if n == 1 {
		return "", 0
	}
	return e.Env.Getenv(string(text[1:n])), n
}

// glob performs pathname expansion on a field. Fields with no unquoted
// pattern characters, or patterns matching nothing, are returned as is.
func (e *Expander) glob(f *field) []string {
	literal := string(f.text)
	if e.Fs == nil {
		return []string{literal}
	}

	var pat strings.Builder
	for i, c := range f.text {
		if !f.meta[i] && strings.IndexByte(`*?[]\`, c) >= 0 {
			pat.WriteByte('\\')
		}
		pat.WriteByte(c)
	}
	if !pattern.HasMeta(pat.String(), 0) {
		return []string{literal}
	}

	dir := ""
	full := pat.String()
	if !path.IsAbs(full) && e.Dir != nil {
		dir = e.Dir()
		full = path.Join(pattern.QuoteMeta(dir, 0), full)
	}

	matches, err := afero.Glob(e.Fs, full)
	if err != nil {
		return []string{literal}
	}

	showHidden := strings.HasPrefix(path.Base(literal), ".")
	var out []string
	for _, m := range matches {
		if !showHidden && strings.HasPrefix(path.Base(m), ".") {
			continue
		}
		if dir != "" {
			m = strings.TrimPrefix(strings.TrimPrefix(m, dir), "/")
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return []string{literal}
	}
	sort.Strings(out)
	return out
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	}
	return false
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i], i == 0) {
			return false
		}
	}
	return true
}
