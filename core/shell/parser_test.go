package shell

import (
	"testing"

	"github.com/ncsh/ncsh/core/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type aliasMap map[string]string

func (m aliasMap) LookupAlias(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func parseLine(t *testing.T, a *arena.Arena, line string, opts ...ParserOption) (*Statements, error) {
	t.Helper()
	tokens, err := Tokenize(a, line)
	require.NoError(t, err)
	return NewParser(a, opts...).Parse(tokens)
}

func mustParse(t *testing.T, line string, opts ...ParserOption) *Statements {
	t.Helper()
	stmts, err := parseLine(t, newTestArena(t), line, opts...)
	require.NoError(t, err)
	return stmts
}

// args returns the unexpanded text of each word of c.
func args(a *arena.Arena, c *Command) []string {
	var out []string
	for _, w := range c.Words {
		out = append(out, w.Literal(a))
	}
	return out
}

func TestParse_Pipeline(t *testing.T) {
	stmts := mustParse(t, "echo hello | grep h")
	require.Equal(t, 1, stmts.Len())

	pipeline, ok := stmts.List[0].(*Pipeline)
	require.True(t, ok, "expected *Pipeline, got %T", stmts.List[0])
	require.Len(t, pipeline.Commands, 2)
	assert.Equal(t, []string{"echo", "hello"}, args(stmts.Arena, pipeline.Commands[0]))
	assert.Equal(t, []string{"grep", "h"}, args(stmts.Arena, pipeline.Commands[1]))
}

func TestParse_SingleCommandIsNotAPipeline(t *testing.T) {
	stmts := mustParse(t, "ls -l")
	require.Equal(t, 1, stmts.Len())

	cmd, ok := stmts.List[0].(*Command)
	require.True(t, ok, "expected *Command, got %T", stmts.List[0])
	assert.Equal(t, []string{"ls", "-l"}, args(stmts.Arena, cmd))
	assert.Empty(t, cmd.Redirects)
}

func TestParse_Empty(t *testing.T) {
	for _, line := range []string{"", "   ", "# just a comment"} {
		stmts := mustParse(t, line)
		assert.Equal(t, 0, stmts.Len())
		assert.Equal(t, "", stmts.String())
	}
}

func TestParse_Precedence(t *testing.T) {
	stmts := mustParse(t, "a; b || c && d | e")
	require.Equal(t, 1, stmts.Len())

	seq, ok := stmts.List[0].(*Sequence)
	require.True(t, ok)
	assert.Equal(t, "a", Format(stmts.Arena, seq.Left))

	or, ok := seq.Right.(*Or)
	require.True(t, ok)
	assert.Equal(t, "b", Format(stmts.Arena, or.Left))

	and, ok := or.Right.(*And)
	require.True(t, ok)
	assert.Equal(t, "c", Format(stmts.Arena, and.Left))

	pipeline, ok := and.Right.(*Pipeline)
	require.True(t, ok)
	assert.Len(t, pipeline.Commands, 2)
}

func TestParse_LeftAssociative(t *testing.T) {
	stmts := mustParse(t, "a && b || c && d")
	require.Equal(t, 1, stmts.Len())

	// ((a && b) || (c && d))
	or, ok := stmts.List[0].(*Or)
	require.True(t, ok)
	left, ok := or.Left.(*And)
	require.True(t, ok)
	assert.Equal(t, "a", Format(stmts.Arena, left.Left))
	assert.Equal(t, "b", Format(stmts.Arena, left.Right))
	_, ok = or.Right.(*And)
	assert.True(t, ok)

	stmts = mustParse(t, "a; b; c")
	outer, ok := stmts.List[0].(*Sequence)
	require.True(t, ok)
	inner, ok := outer.Left.(*Sequence)
	require.True(t, ok)
	assert.Equal(t, "a", Format(stmts.Arena, inner.Left))
	assert.Equal(t, "c", Format(stmts.Arena, outer.Right))
}

func TestParse_Background(t *testing.T) {
	stmts := mustParse(t, "sleep 1 && echo done & ls")
	require.Equal(t, 2, stmts.Len())

	bg, ok := stmts.List[0].(*Background)
	require.True(t, ok)
	_, ok = bg.Inner.(*And)
	assert.True(t, ok)

	cmd, ok := stmts.List[1].(*Command)
	require.True(t, ok)
	assert.Equal(t, []string{"ls"}, args(stmts.Arena, cmd))

	stmts = mustParse(t, "a; b &")
	require.Equal(t, 1, stmts.Len())
	bg, ok = stmts.List[0].(*Background)
	require.True(t, ok)
	_, ok = bg.Inner.(*Sequence)
	assert.True(t, ok)
}

func TestParse_Redirects(t *testing.T) {
	stmts := mustParse(t, "sort < in > out 2>> err &> all >> log 2> e &>> both")
	cmd := stmts.List[0].(*Command)
	assert.Equal(t, []string{"sort"}, args(stmts.Arena, cmd))

	type redirect struct {
		Mode   Mode
		Stream Stream
		Target string
	}
	var got []redirect
	for _, r := range cmd.Redirects {
		got = append(got, redirect{r.Mode, r.Stream, r.Target.Literal(stmts.Arena)})
	}
	assert.Equal(t, []redirect{
		{In, Stdin, "in"},
		{Out, Stdout, "out"},
		{Append, Stderr, "err"},
		{Out, StdoutStderr, "all"},
		{Append, Stdout, "log"},
		{Out, Stderr, "e"},
		{Append, StdoutStderr, "both"},
	}, got)
}

func TestParse_RedirectsInterleavedWithArgs(t *testing.T) {
	stmts := mustParse(t, "> out echo a < in b")
	cmd := stmts.List[0].(*Command)
	assert.Equal(t, []string{"echo", "a", "b"}, args(stmts.Arena, cmd))
	assert.Len(t, cmd.Redirects, 2)
}

func TestParse_RoundTrip(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"command":        {"ls -la", "ls -la"},
		"spacing":        {"ls   -la|wc -l", "ls -la | wc -l"},
		"pipeline":       {"cat f | sort | uniq -c", "cat f | sort | uniq -c"},
		"and-or":         {"make&&echo ok||echo fail", "make && echo ok || echo fail"},
		"sequence":       {"cd /tmp;ls", "cd /tmp; ls"},
		"trailing-semi":  {"ls;", "ls"},
		"background":     {"sleep 10&", "sleep 10 &"},
		"two-statements": {"a & b", "a & b"},
		"redirects":      {"sort<in>out", "sort < in > out"},
		"quoted":         {`echo "a | b" 'c'`, "echo 'a | b' c"},
		"empty-arg":      {`echo ""`, "echo ''"},
		"single-quote":   {`echo "it's"`, `echo 'it'\''s'`},
		"comment":        {"ls # trailing", "ls"},
		"variable":       {"echo $HOME", "echo $HOME"},
		"quoted-var":     {`echo "$A b" '$B'`, `echo "$A b" '$B'`},
		"escaped-var":    {`echo \$A`, `echo '$A'`},
		"mixed-quotes":   {`echo a"$B"'c d'`, `echo a"$B"'c d'`},
		"dq-escapes":     {`echo "$A \"q\" \\"`, `echo "$A "'"'"q"'"'" "'\'`},
		"tilde":          {"cd ~/src", "cd ~/src"},
		"glob":           {"ls *.go", "ls *.go"},
		"status":         {"echo $?", "echo $?"},
		"redirect-var":   {"echo hi > $OUT", "echo hi > $OUT"},
		"assignment":     {"A=1 B='x y' env", "A=1 B='x y' env"},
		"assign-only":    {"A=$B", "A=$B"},
		"assign-empty":   {"A=", "A=''"},
		"quoted-name":    {`"A"=1 echo`, `'A=1' echo`},
		"escaped-equals": {`A\=$B`, `A'='$B`},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stmts := mustParse(t, tc.line)
			assert.Equal(t, tc.want, stmts.String())

			// Formatting is stable.
			again := mustParse(t, stmts.String())
			assert.Equal(t, tc.want, again.String())
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := map[string]struct {
		line     string
		pos      int
		expected string
		found    string
	}{
		"leading-pipe":     {"| ls", 0, "command", `"|"`},
		"trailing-pipe":    {"ls |", 4, "command", "newline"},
		"trailing-and":     {"ls &&", 5, "command", "newline"},
		"trailing-or":      {"ls ||", 5, "command", "newline"},
		"double-pipe-op":   {"ls | | wc", 5, "command", `"|"`},
		"leading-semi":     {"; ls", 0, "command", `";"`},
		"double-semi":      {"ls;; pwd", 3, "command", `";"`},
		"lone-background":  {"&", 0, "command", `"&"`},
		"semi-background":  {"ls; &", 4, "command", `"&"`},
		"missing-target":   {"echo >", 6, "file name after >", "newline"},
		"operator-target":  {"echo > | wc", 7, "file name after >", `"|"`},
		"append-no-target": {"echo hi >> ; ls", 11, "file name after >>", `";"`},
		"redirect-only":    {"> out", 5, "command", "newline"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stmts, err := parseLine(t, newTestArena(t), tc.line)
			assert.Nil(t, stmts)
			assert.ErrorIs(t, err, ErrSyntax)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tc.pos, syntaxErr.Pos)
			assert.Equal(t, tc.expected, syntaxErr.Expected)
			assert.Equal(t, tc.found, syntaxErr.Found)
		})
	}
}

func TestParse_ParserIsReusable(t *testing.T) {
	a := newTestArena(t)
	p := NewParser(a)

	tokens, err := Tokenize(a, "ls |")
	require.NoError(t, err)
	_, err = p.Parse(tokens)
	require.Error(t, err)

	tokens, err = Tokenize(a, "pwd")
	require.NoError(t, err)
	stmts, err := p.Parse(tokens)
	require.NoError(t, err)
	assert.Equal(t, "pwd", stmts.String())
}

func TestParse_Assignments(t *testing.T) {
	cases := map[string]struct {
		line        string
		wantAssigns map[string]string
		wantArgs    []string
	}{
		"only":          {"STR=hello", map[string]string{"STR": "hello"}, nil},
		"quoted-value":  {`wcc="wc -c"`, map[string]string{"wcc": "wc -c"}, nil},
		"before-cmd":    {"A=1 B=2 env", map[string]string{"A": "1", "B": "2"}, []string{"env"}},
		"not-first":     {"make CC=clang", nil, []string{"make", "CC=clang"}},
		"after-cmd":     {"A=1 make CC=clang", map[string]string{"A": "1"}, []string{"make", "CC=clang"}},
		"empty-value":   {"A=", map[string]string{"A": ""}, nil},
		"equals-value":  {"A=b=c", map[string]string{"A": "b=c"}, nil},
		"bad-name":      {"1A=x", nil, []string{"1A=x"}},
		"no-name":       {"=x", nil, []string{"=x"}},
		"quoted-name":   {`"A"=x`, nil, []string{"A=x"}},
		"quoted-equals": {`A"="x`, nil, []string{"A=x"}},
		"redirect":      {"> out A=1", map[string]string{"A": "1"}, nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stmts := mustParse(t, tc.line)
			cmd, ok := stmts.List[0].(*Command)
			require.True(t, ok)

			var assigns map[string]string
			for _, as := range cmd.Assigns {
				if assigns == nil {
					assigns = map[string]string{}
				}
				assigns[stmts.Arena.String(as.Name)] = as.Value.Literal(stmts.Arena)
			}
			assert.Equal(t, tc.wantAssigns, assigns)
			assert.Equal(t, tc.wantArgs, args(stmts.Arena, cmd))
		})
	}
}

func TestParse_AssignmentKeepsQuoting(t *testing.T) {
	stmts := mustParse(t, `A=x'$B'"$C"`)
	cmd := stmts.List[0].(*Command)
	require.Len(t, cmd.Assigns, 1)

	value := cmd.Assigns[0].Value
	assert.Equal(t, "x$B$C", value.Literal(stmts.Arena))
	assert.Equal(t, []byte{Unquoted, Literal, Literal, DoubleQuoted, DoubleQuoted}, stmts.Arena.Bytes(value.Quote))
	assert.Equal(t, 2, value.Pos)
}

func TestParse_WithAliases(t *testing.T) {
	aliases := aliasMap{
		"ll":    "ls -l --color='auto'",
		"empty": "",
	}

	cases := map[string]struct {
		line string
		want string
	}{
		"expanded":        {"ll /tmp", "ls -l --color=auto /tmp"},
		"not-first":       {"echo ll", "echo ll"},
		"quoted":          {`"ll"`, "ll"},
		"in-pipeline":     {"ll | wc", "ls -l --color=auto | wc"},
		"after-and":       {"true && ll", "true && ls -l --color=auto"},
		"empty-value":     {"empty ls", "empty ls"},
		"redirect-first":  {"> out ll", "ll > out"},
		"not-an-alias":    {"ls", "ls"},
		"after-semicolon": {"cd; ll", "cd; ls -l --color=auto"},
		"after-assign":    {"A=1 ll", "A=1 ls -l --color=auto"},
		"assign-value":    {"A=ll", "A=ll"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stmts := mustParse(t, tc.line, WithAliases(aliases))
			assert.Equal(t, tc.want, stmts.String())
		})
	}
}

func TestStatements_LenCap(t *testing.T) {
	stmts := mustParse(t, "a & b & c")
	assert.Equal(t, 3, stmts.Len())
	assert.GreaterOrEqual(t, stmts.Cap(), stmts.Len())
}

func TestParse_ArenaExhausted(t *testing.T) {
	a, err := arena.New(16)
	require.NoError(t, err)

	tokens, err := Tokenize(a, "ll")
	require.NoError(t, err)

	_, err = NewParser(a, WithAliases(aliasMap{"ll": "ls -l --color=auto --group-directories-first"})).Parse(tokens)
	assert.ErrorIs(t, err, arena.ErrOutOfSpace)
}
