// Copyright © 2018 The ELPS authors

package profiler

import (
	"regexp"

	"github.com/luthersystems/clove/lisp"
)

// SkipFilter returns true for functions which should not be traced.
type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	return fun.Type != lisp.LFun || fun.FunData() == nil || fun.IsMacro()
}

// WithDocFilter only traces functions whose docstring contains DocTrace.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithBuiltinFilter skips builtin functions.
func WithBuiltinFilter() Option {
	return WithSkipFilter(func(fun *lisp.LVal) bool {
		return fun.Builtin() != nil
	})
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string used to enable tracing in a profiler
// configured WithDocFilter.  Functions with a docstring containing this
// string are traced.
const DocTrace = "@trace"

var docTraceRegExp = regexp.MustCompile(DocTrace)

func docSkipFilter(fun *lisp.LVal) bool {
	doc := fun.Docstring()
	if doc == "" {
		return true
	}
	return !docTraceRegExp.MatchString(doc)
}
