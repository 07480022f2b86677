// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/joomcode/errorx"
	"github.com/luthersystems/clove/parser/lexer"
	"github.com/luthersystems/clove/parser/token"
)

// Complete returns true if text holds only whole forms, so a REPL can stop
// prompting for continuation lines.  Text containing a syntax error other
// than an unfinished form is complete so the error can be reported.
func Complete(text string) bool {
	p := New(token.NewScanner("repl", text), lexer.Lenient())
	_, err := p.ReadAll()
	if err == nil {
		return true
	}
	return !errorx.IsOfType(err, token.UnexpectedEOF) && !errorx.IsOfType(err, token.UnbalancedQuotes)
}
