package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedQuote matches every *QuoteError.
	ErrUnterminatedQuote = errors.New("unterminated quote")

	// ErrSyntax matches every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
)

// QuoteError is returned by Tokenize when a quote is never closed.
type QuoteError struct {
	// Pos is the byte offset of the opening quote.
	Pos   int
	Quote byte
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("unterminated quote: %c opened at column %d", e.Quote, e.Pos+1)
}

// Is implements errors.Is.
func (e *QuoteError) Is(target error) bool {
	return target == ErrUnterminatedQuote
}

// SyntaxError is returned by the Parser for malformed input.
type SyntaxError struct {
	// Pos is the byte offset of the offending token, or the line length if
	// the input ended early.
	Pos      int
	Expected string
	// Found describes the offending token, "newline" at the end of input.
	Found string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d: expected %s, found %s", e.Pos+1, e.Expected, e.Found)
}

// Is implements errors.Is.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
