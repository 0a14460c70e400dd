package shell

import (
	"strings"

	"github.com/ncsh/ncsh/core/arena"
)

// Tokenize splits a line into tokens. The text of every token is copied into
// the arena.
//
// Quotes are removed from words but remembered in Token.Quote so the
// Expander can tell which bytes may be expanded.
func Tokenize(a *arena.Arena, line string) ([]Token, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	lex := &lexer{a: a, line: line}
	if err := lex.run(); err != nil {
		return nil, err
	}
	return lex.tokens, nil
}

type lexer struct {
	a    *arena.Arena
	line string

	// Scratch space for the word being built.
	text   []byte
	quote  []byte
	inWord bool
	start  int

	tokens []Token
}

func (l *lexer) run() error {
	line := l.line
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if err := l.flush(); err != nil {
				return err
			}
			i++

		case c == '#' && !l.inWord:
			// Comment until the end of the line.
			return l.flush()

		case c == '"':
			l.begin(i)
			end, err := l.doubleQuoted(i)
			if err != nil {
				return err
			}
			i = end

		case c == '\'':
			l.begin(i)
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return &QuoteError{Pos: i, Quote: c}
			}
			for j := i + 1; j < i+1+end; j++ {
				l.add(line[j], Literal)
			}
			i += end + 2

		case c == '\\':
			l.begin(i)
			if i+1 < len(line) {
				l.add(line[i+1], Literal)
				i += 2
			} else {
				l.add(c, Literal)
				i++
			}

		default:
			kind, n := l.operator(i)
			if n == 0 {
				l.begin(i)
				l.add(c, Unquoted)
				i++
				continue
			}
			if err := l.flush(); err != nil {
				return err
			}
			l.tokens = append(l.tokens, Token{Kind: kind, Pos: i})
			i += n
		}
	}

	return l.flush()
}

// doubleQuoted consumes the double quoted run starting at the quote at
// position start and returns the position after the closing quote.
func (l *lexer) doubleQuoted(start int) (int, error) {
	line := l.line
	for j := start + 1; j < len(line); j++ {
		switch c := line[j]; c {
		case '"':
			return j + 1, nil
		case '\\':
			if j+1 < len(line) {
				switch next := line[j+1]; next {
				case '"', '\\', '$', '`':
					l.add(next, Literal)
					j++
					continue
				}
			}
			l.add(c, DoubleQuoted)
		default:
			l.add(c, DoubleQuoted)
		}
	}

	return 0, &QuoteError{Pos: start, Quote: '"'}
}

// operator returns the operator at position i, longest match first, and its
// length. A length of zero means there is no operator at i.
func (l *lexer) operator(i int) (Kind, int) {
	rest := l.line[i:]
	switch {
	case strings.HasPrefix(rest, "2>>") && !l.inWord:
		return RedirectErrAppend, 3
	case strings.HasPrefix(rest, "2>") && !l.inWord:
		return RedirectErr, 2
	case strings.HasPrefix(rest, "&>>"):
		return RedirectAllAppend, 3
	case strings.HasPrefix(rest, "&>"):
		return RedirectAll, 2
	case strings.HasPrefix(rest, "&&"):
		return AndIf, 2
	case strings.HasPrefix(rest, "||"):
		return OrIf, 2
	case strings.HasPrefix(rest, ">>"):
		return RedirectAppend, 2
	}

	switch rest[0] {
	case '&':
		return Amp, 1
	case '|':
		return Pipe, 1
	case ';':
		return Semicolon, 1
	case '<':
		return RedirectIn, 1
	case '>':
		return RedirectOut, 1
	}

	return Word, 0
}

func (l *lexer) begin(pos int) {
	if !l.inWord {
		l.inWord = true
		l.start = pos
	}
}

func (l *lexer) add(c, quoting byte) {
	l.text = append(l.text, c)
	l.quote = append(l.quote, quoting)
}

// flush emits the word being built, if any.
func (l *lexer) flush() error {
	if !l.inWord {
		return nil
	}

	text, err := l.a.Copy(l.text)
	if err != nil {
		return err
	}
	quote, err := l.a.Copy(l.quote)
	if err != nil {
		return err
	}

	l.tokens = append(l.tokens, Token{
		Kind:  Word,
		Text:  text,
		Quote: quote,
		Len:   len(l.text),
		Pos:   l.start,
	})

	l.text = l.text[:0]
	l.quote = l.quote[:0]
	l.inWord = false
	return nil
}
