// Copyright © 2018 The ELPS authors

// Package rdparser is a recursive descent reader producing lisp values from
// the tokens of the lexer package.
package rdparser

import (
	"io"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/lexer"
	"github.com/luthersystems/clove/parser/token"
)

type reader struct{}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ReadAll(name, string(b))
}

// ReadAll reads every form in text.
func ReadAll(name string, text string) ([]*lisp.LVal, error) {
	return New(token.NewScanner(name, text)).ReadAll()
}

// Parser reads forms from a stream of tokens.
type Parser struct {
	src   *TokenSource
	depth int
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner, opts ...lexer.Option) *Parser {
	return NewFromSource(NewTokenSource(scanner, opts...))
}

// NewFromTokens returns a Parser reading toks.
func NewFromTokens(toks []*token.Token) *Parser {
	return NewFromSource(NewSliceSource(toks))
}

// Read reads one form.  Read returns io.EOF when the stream holds no more
// forms.
func (p *Parser) Read() (*lisp.LVal, error) {
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	return p.readForm()
}

// ReadAll reads every remaining form.
func (p *Parser) ReadAll() ([]*lisp.LVal, error) {
	var forms []*lisp.LVal
	for {
		form, err := p.Read()
		if err == io.EOF {
			return forms, nil
		}
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

// Depth returns the number of forms currently open.
func (p *Parser) Depth() int {
	return p.depth
}

// readerMacros map a prefix token onto the symbol heading its expansion.
var readerMacros = map[token.Type]string{
	token.QUOTE:          "quote",
	token.QUASIQUOTE:     "quasiquote",
	token.UNQUOTE:        "unquote",
	token.UNQUOTE_SPLICE: "splice-unquote",
	token.DEREF:          "deref",
}

var closers = map[token.Type]token.Type{
	token.PAREN_L:   token.PAREN_R,
	token.BRACKET_L: token.BRACKET_R,
	token.BRACE_L:   token.BRACE_R,
	token.SET_L:     token.BRACE_R,
}

func (p *Parser) readForm() (*lisp.LVal, error) {
	p.src.Scan()
	tok := p.src.Token
	switch tok.Type {
	case token.EOF:
		return nil, token.Errorf(token.UnexpectedEOF, tok.Source, "unexpected EOF")
	case token.ERROR:
		return nil, p.src.Err()
	case token.ATOM:
		return readAtom(tok)
	case token.STRING:
		s, err := unquote(tok)
		if err != nil {
			return nil, err
		}
		return lisp.String(s).WithSource(tok.Source), nil
	case token.STRING_OPEN:
		return nil, token.Errorf(token.UnbalancedQuotes, tok.Source, "unterminated string literal")
	case token.PAREN_L, token.BRACKET_L, token.BRACE_L, token.SET_L:
		return p.readColl(tok)
	case token.PAREN_R, token.BRACKET_R, token.BRACE_R:
		return nil, token.Errorf(token.UnmatchedSyntax, tok.Source, "unmatched %s", tok.Text)
	case token.META:
		return p.readMeta(tok)
	}
	if name, ok := readerMacros[tok.Type]; ok {
		form, err := p.readOperand(tok)
		if err != nil {
			return nil, err
		}
		return p.list(tok, lisp.Symbol(name).WithSource(tok.Source), form), nil
	}
	return nil, token.Errorf(token.ParseError, tok.Source, "unexpected token: %v", tok)
}

// readOperand reads the form following the reader macro tok.
func (p *Parser) readOperand(tok *token.Token) (*lisp.LVal, error) {
	if p.src.IsEOF() {
		return nil, token.Errorf(token.UnexpectedEOF, tok.Source, "unexpected EOF after %s", tok.Text)
	}
	return p.readForm()
}

// readMeta reads ^m x as (with-meta x m).  A keyword m is shorthand for
// {m true}.
func (p *Parser) readMeta(tok *token.Token) (*lisp.LVal, error) {
	meta, err := p.readOperand(tok)
	if err != nil {
		return nil, err
	}
	switch meta.Type {
	case lisp.LKeyword:
		meta = lisp.MapLiteral([]*lisp.LVal{meta, lisp.Bool(true)}).WithSource(tok.Source)
	case lisp.LMap:
	default:
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "metadata must be a map or keyword: %v", meta)
	}
	form, err := p.readOperand(tok)
	if err != nil {
		return nil, err
	}
	return p.list(tok, lisp.Symbol("with-meta").WithSource(tok.Source), form, meta), nil
}

func (p *Parser) readColl(open *token.Token) (*lisp.LVal, error) {
	p.depth++
	defer func() { p.depth-- }()
	want := closers[open.Type]
	var cells []*lisp.LVal
	for {
		next := p.src.Peek()
		switch {
		case next.Type == token.EOF:
			return nil, token.Errorf(token.UnexpectedEOF, open.Source, "unexpected EOF: unmatched %s", open.Text)
		case next.Type == want:
			p.src.Scan()
			return p.coll(open, cells)
		case next.Type.IsClose():
			p.src.Scan()
			return nil, token.Errorf(token.UnmatchedSyntax, next.Source, "unexpected %s closing %s", next.Text, open.Text)
		}
		form, err := p.readForm()
		if err != nil {
			return nil, err
		}
		cells = append(cells, form)
	}
}

func (p *Parser) coll(open *token.Token, cells []*lisp.LVal) (*lisp.LVal, error) {
	var v *lisp.LVal
	switch open.Type {
	case token.PAREN_L:
		v = lisp.List(cells...)
	case token.BRACKET_L:
		v = lisp.Vector(cells...)
	case token.BRACE_L:
		if len(cells)%2 != 0 {
			return nil, token.Errorf(token.UnmatchedSyntax, open.Source, "map literal must contain an even number of forms")
		}
		v = lisp.MapLiteral(cells)
	case token.SET_L:
		v = lisp.SetLiteral(cells)
	}
	v.Source = open.Source
	return v, nil
}

func (p *Parser) list(tok *token.Token, cells ...*lisp.LVal) *lisp.LVal {
	v := lisp.List(cells...)
	v.Source = tok.Source
	return v
}
