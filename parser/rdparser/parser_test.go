// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/lexer"
	"github.com/luthersystems/clove/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`0`, `0`},
		{`12`, `12`},
		{`-1`, `-1`},
		{`+7`, `7`},
		{`0x1F`, `31`},
		{`-0x10`, `-16`},
		{`123N`, `123N`},
		{`99999999999999999999`, `99999999999999999999N`},
		{`0.3`, `0.3`},
		{`1e3`, `1000.0`},
		{`2.`, `2.0`},
		{`1.5M`, `1.5M`},
		{`3M`, `3M`},
		{`nil`, `nil`},
		{`true`, `true`},
		{`false`, `false`},
		{`abc`, `abc`},
		{`abc?`, `abc?`},
		{`ns/abc`, `ns/abc`},
		{`/`, `/`},
		{`-`, `-`},
		{`:kw`, `:kw`},
		{`:ns/kw`, `:ns/kw`},
		{`#\a`, `#\a`},
		{`#\space`, `#\space`},
		{`#\[`, `#\[`},
		{`#\u0041`, `#\A`},
		{`"xyz"`, `"xyz"`},
		{`"x\nyz"`, `"x\nyz"`},
		{`"x\tyz"`, `"x\tyz"`},
		{`"A"`, `"A"`},
		{`""`, `""`},
		{`""""""`, `""`},
		{`"""a "quoted" b"""`, `"a \"quoted\" b"`},
		{`()`, `()`},
		{`(1 2 3)`, `(1 2 3)`},
		{`[1 [2] 3]`, `[1 [2] 3]`},
		{`{:a 1}`, `{:a 1}`},
		{`#{1}`, `#{1}`},
		{`'x`, `(quote x)`},
		{"`(a ~b ~@c)", `(quasiquote (a (unquote b) (splice-unquote c)))`},
		{`@x`, `(deref x)`},
		{`^{:doc "d"} x`, `(with-meta x {:doc "d"})`},
		{`^:private x`, `(with-meta x {:private true})`},
		{`(a, b ; comment
		 c)`, `(a b c)`},
	}

	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %q", i, test.source) {
			continue
		}
		if assert.Len(t, forms, 1, "test %d", i) {
			assert.Equal(t, test.output, forms[0].String(), "test %d: %q", i, test.source)
		}
	}
}

func TestParserTypes(t *testing.T) {
	tests := []struct {
		source string
		typ    lisp.LType
	}{
		{`1`, lisp.LLong},
		{`1N`, lisp.LBigInt},
		{`1.0`, lisp.LDouble},
		{`1.0M`, lisp.LDecimal},
		{`"s"`, lisp.LString},
		{`#\space`, lisp.LChar},
		{`:k`, lisp.LKeyword},
		{`s`, lisp.LSymbol},
		{`()`, lisp.LList},
		{`[]`, lisp.LVector},
		{`{}`, lisp.LMap},
		{`#{}`, lisp.LSet},
	}
	for _, test := range tests {
		forms, err := ReadAll("test", test.source)
		require.NoError(t, err, test.source)
		require.Len(t, forms, 1)
		assert.Equal(t, test.typ, forms[0].Type, test.source)
	}
}

func TestParserLocations(t *testing.T) {
	forms, err := ReadAll("loc", "(a\n  [b c])")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	list := forms[0]
	assert.Equal(t, "loc", list.Source.File)
	assert.Equal(t, 1, list.Source.Line)
	assert.Equal(t, 1, list.Source.Col)
	vec, ok := list.Nth(1)
	require.True(t, ok)
	assert.Equal(t, 2, vec.Source.Line)
	assert.Equal(t, 3, vec.Source.Col)
	assert.Equal(t, 5, vec.Source.Pos)
}

func TestMapLiteralKeepsDuplicates(t *testing.T) {
	forms, err := ReadAll("test", `{:a 1 :a 2}`)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Len(t, forms[0].Cells, 4)
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		source string
		typ    *errorx.Type
	}{
		{`(a b`, token.UnexpectedEOF},
		{`[a (b]`, token.UnmatchedSyntax},
		{`)`, token.UnmatchedSyntax},
		{`{:a}`, token.UnmatchedSyntax},
		{`"abc`, token.UnbalancedQuotes},
		{`'`, token.UnexpectedEOF},
		{`^:m`, token.UnexpectedEOF},
		{`"\q"`, token.InvalidLiteral},
		{`12ab`, token.InvalidLiteral},
		{`::k`, token.InvalidLiteral},
	}
	for _, test := range tests {
		_, err := ReadAll("test", test.source)
		if assert.Error(t, err, test.source) {
			assert.True(t, errorx.IsOfType(err, test.typ), "%q: %v", test.source, err)
			assert.True(t, errorx.IsOfType(err, token.ParseError), "%q: %v", test.source, err)
		}
	}
}

func TestParserErrorLocation(t *testing.T) {
	_, err := ReadAll("bad.clv", "(a\n  b))")
	require.Error(t, err)
	loc := token.ErrorLocation(err)
	require.NotNil(t, loc)
	assert.Equal(t, "bad.clv", loc.File)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 5, loc.Col)
}

func TestNewFromTokens(t *testing.T) {
	toks, err := lexer.Tokenize("(+ 1 2) :x", "tokens")
	require.NoError(t, err)
	p := NewFromTokens(toks)
	first, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", first.String())
	forms, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, ":x", forms[0].String())
}

func TestReader(t *testing.T) {
	forms, err := NewReader().Read("reader", strings.NewReader("1 2 3"))
	require.NoError(t, err)
	assert.Len(t, forms, 3)
}

func TestComplete(t *testing.T) {
	tests := []struct {
		text     string
		complete bool
	}{
		{``, true},
		{`(+ 1 2)`, true},
		{`(+ 1`, false},
		{`(let [x 1]`, false},
		{`"abc`, false},
		{`"""multi
		line`, false},
		{`'`, false},
		{`)`, true},
		{`(a))`, true},
		{`12ab`, true},
	}
	for _, test := range tests {
		assert.Equal(t, test.complete, Complete(test.text), "%q", test.text)
	}
}
