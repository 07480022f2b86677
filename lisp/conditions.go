// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
	"sync"
)

// Condition names.  These are stable API for programmatic error
// classification by embedding hosts and by catch clauses in lisp.
const (
	CondError            = "error"
	CondParseError       = "parse-error"
	CondUnexpectedEOF    = "unexpected-eof"
	CondUnbalancedQuotes = "unbalanced-quotes"
	CondUnmatchedSyntax  = "unmatched-syntax"
	CondUnresolvedSymbol = "unresolved-symbol"
	CondIllegalRecur     = "illegal-recur"
	CondArityError       = "arity-error"
	CondTypeError        = "type-error"
	CondNotApplicable    = "not-applicable"
	CondAssertionFailure = "assertion-failure"
	CondSecurity         = "security-violation"
	CondInterrupted      = "interrupted"
	CondValueException   = "value-exception"
	CondArithmetic       = "arithmetic-error"
	CondStackOverflow    = "stack-overflow"
)

var builtinConditions = [][2]string{
	{CondParseError, CondError},
	{CondUnexpectedEOF, CondParseError},
	{CondUnbalancedQuotes, CondParseError},
	{CondUnmatchedSyntax, CondParseError},
	{CondUnresolvedSymbol, CondError},
	{CondIllegalRecur, CondError},
	{CondArityError, CondError},
	{CondTypeError, CondError},
	{CondNotApplicable, CondTypeError},
	{CondAssertionFailure, CondError},
	{CondSecurity, CondError},
	{CondInterrupted, CondError},
	{CondValueException, CondError},
	{CondArithmetic, CondError},
	{CondStackOverflow, CondError},
}

// Conditions is a registry of condition names arranged in a single
// inheritance hierarchy rooted at "error".  A catch clause naming a condition
// handles that condition and all of its descendants.
type Conditions struct {
	mu      sync.RWMutex
	parents map[string]string
}

// NewConditions returns a registry holding the builtin conditions.
func NewConditions() *Conditions {
	c := &Conditions{parents: make(map[string]string)}
	for _, pair := range builtinConditions {
		c.parents[pair[0]] = pair[1]
	}
	return c
}

// Derive registers child as a descendant of parent.  Builtin conditions
// cannot be rederived and cycles are rejected.
func (c *Conditions) Derive(child, parent string) error {
	if child == CondError {
		return fmt.Errorf("condition %s is the root condition", child)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pair := range builtinConditions {
		if pair[0] == child {
			return fmt.Errorf("builtin condition %s cannot be rederived", child)
		}
	}
	if parent != CondError {
		if _, ok := c.parents[parent]; !ok {
			return fmt.Errorf("unknown parent condition: %s", parent)
		}
	}
	for p := parent; p != ""; p = c.parents[p] {
		if p == child {
			return fmt.Errorf("condition %s cannot derive from its descendant %s", child, parent)
		}
	}
	c.parents[child] = parent
	return nil
}

// IsA returns true if condition is ancestor or a descendant of ancestor.
// Conditions which were never registered are treated as direct children of
// the root.
func (c *Conditions) IsA(condition, ancestor string) bool {
	if ancestor == CondError {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for p := condition; p != ""; p = c.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Parent returns the parent of condition.
func (c *Conditions) Parent(condition string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.parents[condition]; ok {
		return p
	}
	if condition == CondError {
		return ""
	}
	return CondError
}
