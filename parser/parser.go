// Copyright © 2018 The ELPS authors

// Package parser provides the default lisp.Reader.
package parser

import (
	"io"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/rdparser"
	"github.com/luthersystems/clove/parser/token"
)

// NewReader returns a new lisp.Reader
func NewReader() lisp.Reader {
	return rdparser.NewReader()
}

// Complete returns true if text holds only whole forms.
func Complete(text string) bool {
	return rdparser.Complete(text)
}

// ReadAll reads every form in text.  The unit names the source in locations.
func ReadAll(text, unit string) ([]*lisp.LVal, error) {
	return rdparser.ReadAll(unit, text)
}

// Read reads the first form in text.  Text holding no form is an unexpected
// EOF.
func Read(text, unit string) (*lisp.LVal, error) {
	p := rdparser.New(token.NewScanner(unit, text))
	form, err := p.Read()
	if err == io.EOF {
		return nil, token.Errorf(token.UnexpectedEOF, &token.Location{File: unit, Line: 1, Col: 1}, "no form to read")
	}
	return form, err
}
