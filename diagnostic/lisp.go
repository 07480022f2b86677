// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"errors"

	"github.com/luthersystems/clove/lisp"
)

// FromError returns the Diagnostic describing err.  The call stack of a lisp
// failure becomes notes, innermost call first.  Errors which did not come
// from lisp produce a bare message.
func FromError(err error) Diagnostic {
	var ev *lisp.ErrorVal
	if !errors.As(err, &ev) {
		return Diagnostic{Severity: SeverityError, Message: err.Error()}
	}
	return FromLisp((*lisp.LVal)(ev))
}

// FromLisp returns the Diagnostic describing the LError lerr.
func FromLisp(lerr *lisp.LVal) Diagnostic {
	ev := (*lisp.ErrorVal)(lerr)
	d := Diagnostic{
		Severity:  SeverityError,
		Condition: ev.Condition(),
		Message:   ev.ErrorMessage(),
	}
	if d.Condition == lisp.CondError {
		if fname := ev.FunName(); fname != "" {
			d.Message = fname + ": " + d.Message
		}
	}
	if src := lerr.Source; src != nil && src.Pos >= 0 && src.Line > 0 {
		span := Span{File: src.File, Line: src.Line, Col: src.Col}
		if src.Path != "" {
			span.File = src.Path
		}
		d.Spans = append(d.Spans, span)
	}
	if data := lerr.ErrorData(); !data.IsNil() {
		d.Notes = append(d.Notes, "data: "+data.String())
	}
	if stack := ev.Stack(); stack != nil {
		for i := len(stack.Frames) - 1; i >= 0; i-- {
			frame := &stack.Frames[i]
			if frame.Name == "" {
				continue
			}
			loc := "unknown"
			if frame.Source != nil && frame.Source.Pos >= 0 {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, "in "+frame.Name+" at "+loc)
		}
	}
	return d
}
