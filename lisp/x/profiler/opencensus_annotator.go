// Copyright © 2018 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/clove/lisp"
	"go.opencensus.io/trace"
)

var _ lisp.Profiler = &ocAnnotator{}

// ocAnnotator mirrors otelAnnotator for opencensus.  Each traced call pushes
// the context carrying its span.
type ocAnnotator struct {
	profiler
	root context.Context
	open []context.Context
}

// NewOpenCensusAnnotator returns a profiler which records an opencensus span
// for each function call as a child of the span in parentContext.
func NewOpenCensusAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &ocAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		root: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	if p.root == nil {
		return errors.New("spans can only be appended to a context linked to opencensus")
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	for i := len(p.open) - 1; i >= 0; i-- {
		trace.FromContext(p.open[i]).End()
	}
	p.open = nil
	p.enabled = false
	return nil
}

func (p *ocAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	parent := p.root
	if len(p.open) > 0 {
		parent = p.open[len(p.open)-1]
	}
	label, name := p.prettyFunName(fun)
	ctx, span := trace.StartSpan(parent, label)
	span.AddAttributes(
		trace.StringAttribute("namespace", fun.Package()),
		trace.StringAttribute("function", name),
		trace.StringAttribute(string(AttrFunctionKind), funKind(fun)),
		trace.Int64Attribute(string(AttrCallDepth), int64(len(p.open)+1)),
	)
	if loc := getSourceLoc(fun); loc != nil {
		span.Annotate([]trace.Attribute{
			trace.StringAttribute("file", loc.File),
			trace.Int64Attribute("line", int64(loc.Line)),
		}, "source")
	}
	p.open = append(p.open, ctx)
	depth := len(p.open)
	return func() {
		span.End()
		if len(p.open) >= depth {
			p.open = p.open[:depth-1]
		}
	}
}
