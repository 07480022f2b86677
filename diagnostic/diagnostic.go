// Copyright © 2024 The ELPS authors

// Package diagnostic renders uncaught failures for people: the message, the
// offending source line and the chain of calls which led to it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic is a single failure or warning with optional source annotations
// and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Condition is the condition name of a lisp failure, if any.
	Condition string
	Message   string
	Spans     []Span
	Notes     []string // "= note:" lines (stack frames, data, hints)
}
