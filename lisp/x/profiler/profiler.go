// Copyright © 2018 The ELPS authors

// Package profiler implements lisp.Profiler values which trace, label or
// profile the functions called by lisp programs.
package profiler

import (
	"fmt"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

// Option configures a profiler.
type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// funName returns the qualified name of fun.
func funName(fun *lisp.LVal) string {
	fd := fun.FunData()
	if fd == nil {
		return ""
	}
	return fd.QualifiedName()
}

// prettyFunName returns a label and the qualified name for fun.  Without a
// labeler, or when the labeler has nothing to say, the label is the
// qualified name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	name := funName(fun)
	if name == "" {
		return "", ""
	}
	label := ""
	if p.funLabeler != nil {
		label = p.funLabeler(p.runtime, fun)
	}
	if label == "" {
		label = name
	}
	return label, name
}

// skipTrace returns true if no span should be recorded for fun.
func (p *profiler) skipTrace(fun *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(fun) || p.skipFilter != nil && p.skipFilter(fun)
}

// getSourceLoc returns the location where fun was defined, or nil for
// builtins.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source == nil || fun.Source.Pos < 0 {
		return nil
	}
	return fun.Source
}
