// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/joomcode/errorx"
	"github.com/luthersystems/clove/parser/token"
)

// ErrorVal implements the error interface so that errors can be first class lisp
// objects.  The error condition is stored in the Str field while the message,
// data and call stack are stored in Cells and Native.
type ErrorVal LVal

// Error implements the error interface.  When the error condition is not
// “error” it is printed preceding the error message.  The location of the
// failure precedes everything when it is known.
func (e *ErrorVal) Error() string {
	if e.Source != nil && e.Source.Pos >= 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.baseMessage())
	}
	return e.baseMessage()
}

func (e *ErrorVal) baseMessage() string {
	msg := e.ErrorMessage()
	if e.Str != CondError {
		return fmt.Sprintf("%s: %s", e.Str, msg)
	}
	fname := e.FunName()
	if fname == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", fname, msg)
}

// Condition returns the error condition name (e.g., "parse-error").
func (e *ErrorVal) Condition() string {
	return e.Str
}

// FunName returns the qualified name of the function on the top of the call
// stack when the error occurred.
func (e *ErrorVal) FunName() string {
	stack := (*LVal)(e).CallStack()
	if stack == nil || stack.Top() == nil {
		return ""
	}
	return stack.Top().Name
}

// ErrorMessage returns the underlying message in the error.
func (e *ErrorVal) ErrorMessage() string {
	return (*LVal)(e).ErrorMessage()
}

// Stack returns the call stack captured when the error was created.
func (e *ErrorVal) Stack() *CallStack {
	return (*LVal)(e).CallStack()
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if stack := e.Stack(); stack != nil {
		if !wrote(stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// RaisedValue unwraps the raw value thrown by a script when err represents a
// value-exception.
func RaisedValue(err error) (*LVal, bool) {
	var e *ErrorVal
	if !errors.As(err, &e) || e.Str != CondValueException {
		return nil, false
	}
	return (*LVal)(e).ErrorData(), true
}

// Errorf returns an LError with a formatted error message.
//
// Errors generated during expression evaluation should be created with
// LEnv.Errorf so they capture the call stack.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError with a formatted error message and the
// given condition.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LError,
		Str:    condition,
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// Exception returns an uncaught exception value with the given condition,
// message and data.
func Exception(condition string, msg string, data *LVal) *LVal {
	cells := []*LVal{String(msg)}
	if data != nil && !data.IsNil() {
		cells = append(cells, data)
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LException,
		Str:    condition,
		Cells:  cells,
	}
}

// caught converts a failure in flight into a first-class exception.
func caught(err *LVal) *LVal {
	ex := *err
	ex.Type = LException
	return &ex
}

// raise converts an exception back into a failure in flight.
func raise(ex *LVal) *LVal {
	err := *ex
	err.Type = LError
	return &err
}

// ParseError returns an LError for a failure reported by a Reader.  Errors
// from the token package keep their location and map onto the parse-error
// conditions.  Any other error has the condition "error".
func ParseError(err error) *LVal {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return (*LVal)(lerr)
	}
	cond := CondError
	switch {
	case errorx.IsOfType(err, token.UnexpectedEOF):
		cond = CondUnexpectedEOF
	case errorx.IsOfType(err, token.UnbalancedQuotes):
		cond = CondUnbalancedQuotes
	case errorx.IsOfType(err, token.UnmatchedSyntax):
		cond = CondUnmatchedSyntax
	case errorx.IsOfType(err, token.ParseError):
		cond = CondParseError
	}
	v := ErrorConditionf(cond, "%s", token.ErrorMessage(err))
	if loc := token.ErrorLocation(err); loc != nil {
		v.Source = loc
	}
	return v
}
