// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek returns an EOF token.
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (tok *Token) String() string {
	if tok == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used for the clove lexer/reader.
const (
	INVALID Type = iota
	ERROR
	EOF

	// ATOM is any run of non-special characters.  Atoms are classified as
	// numbers, literals, keywords, and symbols by the reader.
	ATOM
	STRING
	// STRING_OPEN is only produced by a lenient lexer when input ends inside
	// a string literal.
	STRING_OPEN

	// Reader macros
	QUOTE
	QUASIQUOTE
	UNQUOTE
	UNQUOTE_SPLICE
	META
	DEREF

	// Delimiters
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R
	BRACE_L
	BRACE_R
	SET_L

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:        "invalid",
	ERROR:          "error",
	EOF:            "EOF",
	ATOM:           "atom",
	STRING:         "string",
	STRING_OPEN:    "open-string",
	QUOTE:          "'",
	QUASIQUOTE:     "`",
	UNQUOTE:        "~",
	UNQUOTE_SPLICE: "~@",
	META:           "^",
	DEREF:          "@",
	PAREN_L:        "(",
	PAREN_R:        ")",
	BRACKET_L:      "[",
	BRACKET_R:      "]",
	BRACE_L:        "{",
	BRACE_R:        "}",
	SET_L:          "#{",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsOpen returns true if typ begins a bracketed form.
func (typ Type) IsOpen() bool {
	return typ == PAREN_L || typ == BRACKET_L || typ == BRACE_L || typ == SET_L
}

// IsClose returns true if typ terminates a bracketed form.
func (typ Type) IsClose() bool {
	return typ == PAREN_R || typ == BRACKET_R || typ == BRACE_R
}

// Location is a position in a named source unit.
type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int    // byte offset from the start of the unit
	Line int    // line number (starting at 1 when tracked)
	Col  int    // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	if loc == nil {
		return "<unknown>"
	}
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Native returns a Location which marks values created by Go code.
func Native(name string) *Location {
	return &Location{File: name, Pos: -1}
}
