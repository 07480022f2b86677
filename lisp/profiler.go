// Copyright © 2018 The ELPS authors

package lisp

// Profiler observes function calls made by the evaluator.
type Profiler interface {
	// IsEnabled returns true if the profiler is recording calls.
	IsEnabled() bool
	// Enable starts recording calls.
	Enable() error
	// Complete ends the profiling session and flushes any output.
	Complete() error
	// Start marks the beginning of a call to fun and returns a function
	// marking its end.
	Start(fun *LVal) func()
}
