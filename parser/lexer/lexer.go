// Copyright © 2018 The ELPS authors

package lexer

import (
	"strings"
	"unicode"

	"github.com/luthersystems/clove/parser/token"
)

type LexFn func(*Lexer) (*token.Token, error)

// specialRunes are always lexed as delimiters, regardless of adjacent text.
const specialRunes = "()[]{}^'`~@\";,"

// Option configures a Lexer.
type Option func(*Lexer)

// Lenient disables strict quote balancing.  A lenient lexer produces a
// STRING_OPEN token instead of failing when input ends inside a string.
func Lenient() Option {
	return func(lex *Lexer) {
		lex.lenient = true
	}
}

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
	lenient bool
	done    bool
}

func New(s *token.Scanner, opts ...Option) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	for _, opt := range opts {
		opt(lex)
	}
	return lex
}

// Tokenize converts text into a sequence of positioned tokens terminated by a
// single EOF token.  Comments and whitespace are stripped.
func Tokenize(text string, file string, opts ...Option) ([]*token.Token, error) {
	lex := New(token.NewScanner(file, text), opts...)
	var toks []*token.Token
	for {
		tok, err := lex.ReadToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// ReadToken returns the next token in the stream.  After an EOF token is
// returned every subsequent call returns EOF.
func (lex *Lexer) ReadToken() (*token.Token, error) {
	if lex.done {
		return &token.Token{Type: token.EOF, Source: lex.scanner.Loc()}, nil
	}
	tok, err := lex.lex(lex)
	if err != nil || tok.Type == token.EOF {
		lex.done = true
	}
	return tok, err
}

func (lex *Lexer) readToken() (*token.Token, error) {
	lex.skipIgnored()
	c, ok := lex.scanner.Peek()
	if !ok {
		return lex.scanner.EmitToken(token.EOF), nil
	}
	switch c {
	case '(':
		return lex.charToken(token.PAREN_L)
	case ')':
		return lex.charToken(token.PAREN_R)
	case '[':
		return lex.charToken(token.BRACKET_L)
	case ']':
		return lex.charToken(token.BRACKET_R)
	case '{':
		return lex.charToken(token.BRACE_L)
	case '}':
		return lex.charToken(token.BRACE_R)
	case '^':
		return lex.charToken(token.META)
	case '\'':
		return lex.charToken(token.QUOTE)
	case '`':
		return lex.charToken(token.QUASIQUOTE)
	case '@':
		return lex.charToken(token.DEREF)
	case '~':
		lex.scanner.ScanRune()
		if lex.scanner.AcceptRune('@') {
			return lex.scanner.EmitToken(token.UNQUOTE_SPLICE), nil
		}
		return lex.scanner.EmitToken(token.UNQUOTE), nil
	case '"':
		return lex.readString()
	case '#':
		next, ok := lex.scanner.PeekAt(1)
		if ok && next == '{' {
			lex.scanner.ScanRune()
			lex.scanner.ScanRune()
			return lex.scanner.EmitToken(token.SET_L), nil
		}
		if ok && next == '\\' {
			return lex.readChar()
		}
	}
	return lex.readAtom()
}

// readChar scans a character literal.  The rune following the backslash is
// part of the literal even when it is a delimiter.
func (lex *Lexer) readChar() (*token.Token, error) {
	lex.scanner.ScanRune()
	lex.scanner.ScanRune()
	if lex.scanner.ScanRune() {
		lex.scanner.AcceptSeq(isAtomRune)
	}
	return lex.scanner.EmitToken(token.ATOM), nil
}

func (lex *Lexer) charToken(typ token.Type) (*token.Token, error) {
	lex.scanner.ScanRune()
	return lex.scanner.EmitToken(typ), nil
}

// skipIgnored discards whitespace, commas and line comments.
func (lex *Lexer) skipIgnored() {
	for {
		n := lex.scanner.AcceptSeq(isIgnored)
		if lex.scanner.AcceptRune(';') {
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
			n++
		}
		if n == 0 {
			lex.scanner.Ignore()
			return
		}
	}
}

func (lex *Lexer) readAtom() (*token.Token, error) {
	lex.scanner.AcceptSeq(isAtomRune)
	return lex.scanner.EmitToken(token.ATOM), nil
}

// readString scans a single-line, empty, or triple-quoted string literal.
// Escapes are validated by the reader; the lexer only ensures a backslash is
// followed by some rune.
func (lex *Lexer) readString() (*token.Token, error) {
	start := lex.scanner.LocStart()
	if lex.scanner.AcceptString(`"""`) {
		return lex.readStringBody(start, `"""`)
	}
	lex.scanner.ScanRune()
	return lex.readStringBody(start, `"`)
}

func (lex *Lexer) readStringBody(start *token.Location, delim string) (*token.Token, error) {
	for {
		if lex.scanner.AcceptString(delim) {
			return lex.scanner.EmitToken(token.STRING), nil
		}
		c, ok := lex.scanner.Peek()
		if !ok {
			if lex.lenient {
				return lex.scanner.EmitToken(token.STRING_OPEN), nil
			}
			return nil, token.Errorf(token.UnbalancedQuotes, start, "unterminated string literal")
		}
		lex.scanner.ScanRune()
		if c != '\\' {
			continue
		}
		if !lex.scanner.ScanRune() {
			if lex.lenient {
				return lex.scanner.EmitToken(token.STRING_OPEN), nil
			}
			return nil, token.Errorf(token.UnexpectedEOF, lex.scanner.Loc(), "unexpected EOF in escape sequence")
		}
	}
}

func isIgnored(c rune) bool {
	return c == ',' || unicode.IsSpace(c)
}

func isAtomRune(c rune) bool {
	return !isIgnored(c) && !strings.ContainsRune(specialRunes, c)
}
