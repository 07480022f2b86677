// Copyright © 2018 The ELPS authors

package token

import "github.com/joomcode/errorx"

// Errors is the namespace of all errors produced while reading source text.
var Errors = errorx.NewNamespace("parse")

var (
	// ParseError is the supertype of every lexer and reader failure.
	ParseError = Errors.NewType("parse_error")
	// UnexpectedEOF signals input that ended in the middle of a form or an
	// escape sequence.
	UnexpectedEOF = ParseError.NewSubtype("unexpected_eof")
	// UnbalancedQuotes signals an unterminated string literal.
	UnbalancedQuotes = ParseError.NewSubtype("unbalanced_quotes")
	// UnmatchedSyntax signals a stray closing bracket or an odd map literal.
	UnmatchedSyntax = ParseError.NewSubtype("unmatched_syntax")
	// InvalidLiteral signals a malformed atom or string escape.
	InvalidLiteral = ParseError.NewSubtype("invalid_literal")
)

// LocationProperty attaches the *Location of a failure to an errorx error.
var LocationProperty = errorx.RegisterProperty("location")

// Errorf returns a new error of type typ located at loc.
func Errorf(typ *errorx.Type, loc *Location, format string, v ...interface{}) error {
	return typ.New(format, v...).WithProperty(LocationProperty, loc)
}

// ErrorLocation returns the location attached to err, if any.
func ErrorLocation(err error) *Location {
	v, ok := errorx.ExtractProperty(err, LocationProperty)
	if !ok {
		return nil
	}
	loc, _ := v.(*Location)
	return loc
}

// ErrorMessage returns the message of a parse error without its type prefix.
func ErrorMessage(err error) string {
	if e := errorx.Cast(err); e != nil {
		return e.Message()
	}
	return err.Error()
}
