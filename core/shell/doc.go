// Package shell turns a line of input into an executable Statement tree.
//
// Loosely follows
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
// 1. The shell breaks the input into tokens: words and operators; see
// Tokenize.
//
// 2. The shell parses the tokens into commands, pipelines and lists joined by
// ";", "&&", "||" and "&"; see Parser.
//
// 3. Leading NAME=value words become assignments. Redirection operators and
// their targets are removed from the argument list and attached to the
// command they belong to.
//
// 4. Just before a command runs, each of its words is expanded (parameters,
// tilde, pathnames) using the quoting recorded by the lexer; see Expander.
//
// All text produced along the way lives in the arena passed in by the caller
// and is only valid until that arena is reset.
package shell
