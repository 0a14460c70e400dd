package shell

import (
	"fmt"

	"github.com/ncsh/ncsh/core/arena"
)

// Kind identifies the type of a Token.
type Kind uint8

const (
	Word Kind = iota
	Pipe
	AndIf
	OrIf
	Semicolon
	Amp
	RedirectIn
	RedirectOut
	RedirectAppend
	// Quote is the kind of quoting applied to a byte of a word; see Token.Quote.
	Quote
	RedirectErr
	RedirectErrAppend
	RedirectAll
	RedirectAllAppend
)

var kindNames = map[Kind]string{
	Word:              "word",
	Pipe:              "|",
	AndIf:             "&&",
	OrIf:              "||",
	Semicolon:         ";",
	Amp:               "&",
	RedirectIn:        "<",
	RedirectOut:       ">",
	RedirectAppend:    ">>",
	Quote:             "quote",
	RedirectErr:       "2>",
	RedirectErrAppend: "2>>",
	RedirectAll:       "&>",
	RedirectAllAppend: "&>>",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsRedirect returns true if the token introduces a redirection.
func (k Kind) IsRedirect() bool {
	switch k {
	case RedirectIn, RedirectOut, RedirectAppend,
		RedirectErr, RedirectErrAppend, RedirectAll, RedirectAllAppend:
		return true
	}
	return false
}

// Quoting applied to a single byte of a word.
const (
	// Unquoted bytes are subject to every expansion.
	Unquoted byte = iota
	// DoubleQuoted bytes take part in parameter expansion only.
	DoubleQuoted
	// Literal bytes came from single quotes or a backslash escape.
	Literal
)

// Token is a lexical unit of a line.
type Token struct {
	Kind Kind
	// Text holds the de-quoted text of a Word.
	Text arena.Span
	// Quote holds one quoting byte (Unquoted, DoubleQuoted or Literal) for
	// every byte of Text.
	Quote arena.Span
	// Len is the length of Text in bytes.
	Len int
	// Pos is the byte offset of the token in the line.
	Pos int
}

// Quoted returns true if any part of the word was quoted or escaped.
func (t Token) Quoted(a *arena.Arena) bool {
	for _, q := range a.Bytes(t.Quote) {
		if q != Unquoted {
			return true
		}
	}
	return false
}

// Literal returns the de-quoted text of the token without any expansion.
func (t Token) Literal(a *arena.Arena) string {
	if t.Kind != Word {
		return t.Kind.String()
	}
	return a.String(t.Text)
}
