package shell

import (
	"fmt"

	"github.com/anmitsu/go-shlex"
	"github.com/ncsh/ncsh/core/arena"
)

// Aliases resolves command aliases.
type Aliases interface {
	LookupAlias(name string) (string, bool)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithAliases replaces unquoted command names found in aliases with their
// values.
func WithAliases(aliases Aliases) ParserOption {
	return func(p *Parser) {
		p.aliases = aliases
	}
}

// Parser builds Statements from tokens using recursive descent with one token
// of lookahead. Words are left unexpanded.
//
// Binding, loosest first: ";" then "||" then "&&" then "|". A "&" ends the
// statement before it and runs it in the background.
type Parser struct {
	a       *arena.Arena
	aliases Aliases

	tokens []Token
	pos    int
}

// NewParser creates a parser that allocates in a.
func NewParser(a *arena.Arena, opts ...ParserOption) *Parser {
	p := &Parser{a: a}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a line worth of tokens. No tree is returned on error.
func (p *Parser) Parse(tokens []Token) (*Statements, error) {
	p.tokens = tokens
	p.pos = 0
	defer func() {
		p.tokens = nil
	}()

	out := &Statements{Arena: p.a}
	for !p.done() {
		stmt, err := p.sequence()
		if err != nil {
			return nil, err
		}

		if p.peekIs(Amp) {
			p.next()
			stmt = &Background{Inner: stmt}
		} else if !p.done() {
			return nil, p.unexpected("end of statement")
		}

		out.List = append(out.List, stmt)
	}

	return out, nil
}

func (p *Parser) sequence() (Statement, error) {
	left, err := p.or()
	if err != nil {
		return nil, err
	}

	for p.peekIs(Semicolon) {
		p.next()
		if p.done() {
			// A trailing ";" ends the line.
			break
		}

		right, err := p.or()
		if err != nil {
			return nil, err
		}
		left = &Sequence{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) or() (Statement, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}

	for p.peekIs(OrIf) {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) and() (Statement, error) {
	left, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	for p.peekIs(AndIf) {
		p.next()
		right, err := p.pipeline()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) pipeline() (Statement, error) {
	first, err := p.command()
	if err != nil {
		return nil, err
	}
	if !p.peekIs(Pipe) {
		return first, nil
	}

	pipeline := &Pipeline{Commands: []*Command{first}}
	for p.peekIs(Pipe) {
		p.next()
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)
	}

	return pipeline, nil
}

func (p *Parser) command() (*Command, error) {
	cmd := &Command{}
	start := p.pos

	for !p.done() {
		tok := p.tokens[p.pos]
		switch {
		case tok.Kind == Word && len(cmd.Words) == 0:
			p.next()
			assign, ok, err := p.assignment(tok)
			if err != nil {
				return nil, err
			}
			if ok {
				cmd.Assigns = append(cmd.Assigns, assign)
				continue
			}

			words := []Token{tok}
			if p.pos-1 == start+len(cmd.Assigns) {
				if words, err = p.alias(tok); err != nil {
					return nil, err
				}
			}
			cmd.Words = append(cmd.Words, words...)

		case tok.Kind == Word:
			cmd.Words = append(cmd.Words, p.next())

		case tok.Kind.IsRedirect():
			p.next()
			redirect, err := p.redirect(tok)
			if err != nil {
				return nil, err
			}
			cmd.Redirects = append(cmd.Redirects, redirect)

		default:
			return p.finish(cmd)
		}
	}

	return p.finish(cmd)
}

func (p *Parser) finish(cmd *Command) (*Command, error) {
	if len(cmd.Words) == 0 && len(cmd.Assigns) == 0 {
		return nil, p.unexpected("command")
	}
	return cmd, nil
}

func (p *Parser) redirect(op Token) (Redirection, error) {
	if !p.peekIs(Word) {
		return Redirection{}, p.unexpected(fmt.Sprintf("file name after %s", op.Kind))
	}

	r := Redirection{Target: p.next()}
	switch op.Kind {
	case RedirectIn:
		r.Mode, r.Stream = In, Stdin
	case RedirectOut:
		r.Mode, r.Stream = Out, Stdout
	case RedirectAppend:
		r.Mode, r.Stream = Append, Stdout
	case RedirectErr:
		r.Mode, r.Stream = Out, Stderr
	case RedirectErrAppend:
		r.Mode, r.Stream = Append, Stderr
	case RedirectAll:
		r.Mode, r.Stream = Out, StdoutStderr
	case RedirectAllAppend:
		r.Mode, r.Stream = Append, StdoutStderr
	}
	return r, nil
}

// assignment splits a NAME=value word. The name and the "=" must be
// unquoted.
func (p *Parser) assignment(tok Token) (Assignment, bool, error) {
	text := p.a.Bytes(tok.Text)
	quote := p.a.Bytes(tok.Quote)

	eq := -1
	for i, c := range text {
		if quote[i] != Unquoted {
			break
		}
		if c == '=' {
			eq = i
			break
		}
	}
	if eq <= 0 || !validName(string(text[:eq])) {
		return Assignment{}, false, nil
	}

	name, err := p.a.Copy(text[:eq])
	if err != nil {
		return Assignment{}, false, err
	}
	value, err := p.a.Copy(text[eq+1:])
	if err != nil {
		return Assignment{}, false, err
	}
	valueQuote, err := p.a.Copy(quote[eq+1:])
	if err != nil {
		return Assignment{}, false, err
	}

	return Assignment{
		Name: name,
		Value: Token{
			Kind:  Word,
			Text:  value,
			Quote: valueQuote,
			Len:   tok.Len - eq - 1,
			Pos:   tok.Pos + eq + 1,
		},
	}, true, nil
}

// alias returns the words of the alias named by tok, or tok itself if there
// is none. Alias words are never expanded.
func (p *Parser) alias(tok Token) ([]Token, error) {
	if p.aliases == nil || tok.Quoted(p.a) {
		return []Token{tok}, nil
	}
	value, ok := p.aliases.LookupAlias(p.a.String(tok.Text))
	if !ok {
		return []Token{tok}, nil
	}

	words, err := shlex.Split(value, true)
	if err != nil {
		return nil, fmt.Errorf("alias %s: %w", tok.Literal(p.a), err)
	}
	if len(words) == 0 {
		return []Token{tok}, nil
	}

	out := make([]Token, 0, len(words))
	for _, w := range words {
		word, err := literalWord(p.a, w, tok.Pos)
		if err != nil {
			return nil, err
		}
		out = append(out, word)
	}
	return out, nil
}

// literalWord copies s into the arena as a word with every byte quoted.
func literalWord(a *arena.Arena, s string, pos int) (Token, error) {
	text, err := a.CopyString(s)
	if err != nil {
		return Token{}, err
	}
	quote, err := a.Alloc(len(s))
	if err != nil {
		return Token{}, err
	}
	mask := a.Bytes(quote)
	for i := range mask {
		mask[i] = Literal
	}
	return Token{Kind: Word, Text: text, Quote: quote, Len: len(s), Pos: pos}, nil
}

func (p *Parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peekIs(kind Kind) bool {
	return !p.done() && p.tokens[p.pos].Kind == kind
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// unexpected builds a SyntaxError for the current token.
func (p *Parser) unexpected(expected string) error {
	if p.done() {
		pos := 0
		if n := len(p.tokens); n > 0 {
			last := p.tokens[n-1]
			pos = last.Pos + len(last.Kind.String())
			if last.Kind == Word {
				pos = last.Pos + last.Len
			}
		}
		return &SyntaxError{Pos: pos, Expected: expected, Found: "newline"}
	}

	tok := p.tokens[p.pos]
	found := fmt.Sprintf("%q", tok.Kind.String())
	if tok.Kind == Word {
		found = fmt.Sprintf("word %q", tok.Literal(p.a))
	}
	return &SyntaxError{Pos: tok.Pos, Expected: expected, Found: found}
}
