// Copyright © 2018 The ELPS authors

package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/clove/lisp"
)

// pprof label keys set while a lisp function runs.
const (
	LabelFunction  = "function"
	LabelNamespace = "namespace"
)

// pprofAnnotator labels the goroutine evaluating lisp code with the function
// being called and its namespace so CPU profiles collected with pprof can be
// broken down by either.  The annotator does not start pprof.
type pprofAnnotator struct {
	profiler
	root   context.Context
	labels []context.Context
}

var _ lisp.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler which sets pprof goroutine labels.
// Labels already present in parentContext are kept.
func NewPprofAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		root: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	if p.root == nil {
		p.root = context.Background()
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete restores the labels of the parent context.
func (p *pprofAnnotator) Complete() error {
	p.labels = nil
	pprof.SetGoroutineLabels(p.root)
	p.enabled = false
	return nil
}

func (p *pprofAnnotator) current() context.Context {
	if len(p.labels) == 0 {
		return p.root
	}
	return p.labels[len(p.labels)-1]
}

func (p *pprofAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	ctx := pprof.WithLabels(p.current(), pprof.Labels(
		LabelFunction, label,
		LabelNamespace, fun.Package()))
	p.labels = append(p.labels, ctx)
	depth := len(p.labels)
	pprof.SetGoroutineLabels(ctx)
	return func() {
		if len(p.labels) >= depth {
			p.labels = p.labels[:depth-1]
		}
		pprof.SetGoroutineLabels(p.current())
	}
}
