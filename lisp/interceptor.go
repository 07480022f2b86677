// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"time"
)

// Interceptor is consulted by the evaluator around every function call.  A
// sandboxing host uses an Interceptor to deny access to named functions and
// to bound the execution time of a Thread.
type Interceptor interface {
	// ApproveCall returns a non-nil error if the function with the given
	// qualified name must not be called.
	ApproveCall(name string) error
	// RemainingBudget returns the time left for a thread which began
	// evaluating at start.  The returned bool is false when execution time
	// is unbounded.
	RemainingBudget(start time.Time) (time.Duration, bool)
}

// AcceptAll is an Interceptor which approves every call and imposes no time
// limit.
type AcceptAll struct{}

var _ Interceptor = AcceptAll{}

// ApproveCall implements Interceptor.
func (AcceptAll) ApproveCall(name string) error { return nil }

// RemainingBudget implements Interceptor.
func (AcceptAll) RemainingBudget(start time.Time) (time.Duration, bool) { return 0, false }

// Sandbox is an Interceptor which denies a fixed set of functions and limits
// execution time.
type Sandbox struct {
	deny    map[string]bool
	maxTime time.Duration
}

var _ Interceptor = (*Sandbox)(nil)

// NewSandbox returns a Sandbox denying calls to the qualified function names
// in deny.  A maxTime of zero does not limit execution time.
func NewSandbox(deny []string, maxTime time.Duration) *Sandbox {
	s := &Sandbox{
		deny:    make(map[string]bool, len(deny)),
		maxTime: maxTime,
	}
	for _, name := range deny {
		s.deny[name] = true
	}
	return s
}

// ApproveCall implements Interceptor.
func (s *Sandbox) ApproveCall(name string) error {
	if s.deny[name] {
		return fmt.Errorf("call to %s is not permitted", name)
	}
	return nil
}

// RemainingBudget implements Interceptor.
func (s *Sandbox) RemainingBudget(start time.Time) (time.Duration, bool) {
	if s.maxTime <= 0 {
		return 0, false
	}
	return s.maxTime - time.Since(start), true
}
