// Copyright © 2018 The ELPS authors

package lexer

import (
	"reflect"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/luthersystems/clove/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []*token.Token
	}{
		{``, []*token.Token{
			testToken(token.EOF, ""),
		}},
		{`abc`, []*token.Token{
			testToken(token.ATOM, "abc"),
			testToken(token.EOF, ""),
		}},
		{`=+()[]{}`, []*token.Token{
			testToken(token.ATOM, "=+"),
			testToken(token.PAREN_L, "("),
			testToken(token.PAREN_R, ")"),
			testToken(token.BRACKET_L, "["),
			testToken(token.BRACKET_R, "]"),
			testToken(token.BRACE_L, "{"),
			testToken(token.BRACE_R, "}"),
			testToken(token.EOF, ""),
		}},
		{`#\( #\space(#\a)`, []*token.Token{
			testToken(token.ATOM, `#\(`),
			testToken(token.ATOM, `#\space`),
			testToken(token.PAREN_L, "("),
			testToken(token.ATOM, `#\a`),
			testToken(token.PAREN_R, ")"),
			testToken(token.EOF, ""),
		}},
		{`a,b ; comment
		c`, []*token.Token{
			testToken(token.ATOM, "a"),
			testToken(token.ATOM, "b"),
			testToken(token.ATOM, "c"),
			testToken(token.EOF, ""),
		}},
		{"`(a ~b ~@c)", []*token.Token{
			testToken(token.QUASIQUOTE, "`"),
			testToken(token.PAREN_L, "("),
			testToken(token.ATOM, "a"),
			testToken(token.UNQUOTE, "~"),
			testToken(token.ATOM, "b"),
			testToken(token.UNQUOTE_SPLICE, "~@"),
			testToken(token.ATOM, "c"),
			testToken(token.PAREN_R, ")"),
			testToken(token.EOF, ""),
		}},
		{"x'y@z^w~\n", []*token.Token{
			testToken(token.ATOM, "x"),
			testToken(token.QUOTE, "'"),
			testToken(token.ATOM, "y"),
			testToken(token.DEREF, "@"),
			testToken(token.ATOM, "z"),
			testToken(token.META, "^"),
			testToken(token.ATOM, "w"),
			testToken(token.UNQUOTE, "~"),
			testToken(token.EOF, ""),
		}},
		{`#{1 :a} #x`, []*token.Token{
			testToken(token.SET_L, "#{"),
			testToken(token.ATOM, "1"),
			testToken(token.ATOM, ":a"),
			testToken(token.BRACE_R, "}"),
			testToken(token.ATOM, "#x"),
			testToken(token.EOF, ""),
		}},
		{`"abc" "" "a\"b"`, []*token.Token{
			testToken(token.STRING, `"abc"`),
			testToken(token.STRING, `""`),
			testToken(token.STRING, `"a\"b"`),
			testToken(token.EOF, ""),
		}},
		{`"""a
"b" c"""x`, []*token.Token{
			testToken(token.STRING, "\"\"\"a\n\"b\" c\"\"\""),
			testToken(token.ATOM, "x"),
			testToken(token.EOF, ""),
		}},
	}
	for i, test := range tests {
		toks, err := Tokenize(test.input, "test")
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		for _, tok := range toks {
			tok.Source = nil
		}
		if !reflect.DeepEqual(toks, test.tokens) {
			t.Errorf("test %d: unexpected tokens for input", i)
			t.Logf("source:\n\t%s", test.input)
			for _, tok := range toks {
				t.Logf("\t%v", tok)
			}
		}
	}
}

func TestLexerLocation(t *testing.T) {
	toks, err := Tokenize("(a\n  bc)", "loc.clv")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, &token.Location{File: "loc.clv", Pos: 5, Line: 2, Col: 3}, toks[2].Source)
	assert.Equal(t, 7, toks[3].Source.Pos)
}

func TestLexerErrors(t *testing.T) {
	_, err := Tokenize(`(print "abc`, "test")
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, token.UnbalancedQuotes))
	assert.True(t, errorx.IsOfType(err, token.ParseError))
	loc := token.ErrorLocation(err)
	require.NotNil(t, loc)
	assert.Equal(t, 1, loc.Line)
	assert.Equal(t, 8, loc.Col)

	_, err = Tokenize(`"abc\`, "test")
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, token.UnexpectedEOF))

	_, err = Tokenize(`"""abc""`, "test")
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, token.UnbalancedQuotes))
}

func TestLexerLenient(t *testing.T) {
	toks, err := Tokenize("(print \"abc\ndef", "test", Lenient())
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.STRING_OPEN, toks[2].Type)
	assert.Equal(t, token.EOF, toks[3].Type)
}

func testToken(typ token.Type, text string) *token.Token {
	return &token.Token{
		Type: typ,
		Text: text,
	}
}
