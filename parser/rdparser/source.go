// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/clove/parser/lexer"
	"github.com/luthersystems/clove/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer but a slice of tokens produced earlier may be read
// as well.
type TokenStream interface {
	// ReadToken returns the next token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	ReadToken() (*token.Token, error)
}

// sliceStream is a TokenStream over tokens which were already lexed.
type sliceStream struct {
	toks []*token.Token
	eof  *token.Token
}

func (s *sliceStream) ReadToken() (*token.Token, error) {
	if len(s.toks) == 0 {
		return s.eof, nil
	}
	tok := s.toks[0]
	s.toks = s.toks[1:]
	if tok.Type == token.EOF {
		s.eof = tok
	}
	return tok, nil
}

// TokenSource adds one token of lookahead to a TokenStream.
type TokenSource struct {
	lex   TokenStream
	Token *token.Token
	peek  *token.Token
	err   error
}

// NewTokenStreamSource returns a TokenSource reading from stream.
func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource initializes and returns a new TokenSource that lexes tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner, opts ...lexer.Option) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner, opts...))
}

// NewSliceSource returns a TokenSource reading toks in order.  A missing EOF
// token is implied at the end of toks.
func NewSliceSource(toks []*token.Token) *TokenSource {
	eof := &token.Token{Type: token.EOF, Source: &token.Location{}}
	if n := len(toks); n > 0 {
		eof.Source = toks[n-1].Source
	}
	return NewTokenStreamSource(&sliceStream{toks: toks, eof: eof})
}

// Peek returns the next token without consuming it.  A lexing failure is
// reported by Err and presented as an ERROR token.
func (s *TokenSource) Peek() *token.Token {
	if s.peek != nil {
		return s.peek
	}
	tok, err := s.lex.ReadToken()
	if err != nil {
		s.err = err
		tok = &token.Token{Type: token.ERROR, Source: token.ErrorLocation(err)}
	}
	s.peek = tok
	return tok
}

// Err returns the lexing failure which produced the last ERROR token.
func (s *TokenSource) Err() error {
	return s.err
}

// AcceptType consumes the next token if it has one of the given types.
func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

// Scan consumes the next token.  Scan returns false at the end of the
// stream.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

// IsEOF returns true if the stream is exhausted.
func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	s.peek = nil
}
