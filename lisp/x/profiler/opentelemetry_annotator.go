// Copyright © 2018 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/clove/lisp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
const ContextOpenTelemetryTracerKey = "otelParentTracer"

// DefaultTracerName names the tracer used when the parent context does not
// carry one.
const DefaultTracerName = "clove"

// Span attributes describing the called function beyond the code.*
// conventions.
const (
	AttrFunctionKind = attribute.Key("clove.function.kind")
	AttrFunctionPure = attribute.Key("clove.function.pure")
	AttrCallDepth    = attribute.Key("clove.call.depth")
)

var _ lisp.Profiler = &otelAnnotator{}

// otelAnnotator keeps one open span per traced call.  Spans nest by call
// depth so each call is a child of the nearest traced caller.
type otelAnnotator struct {
	profiler
	root   context.Context
	tracer trace.Tracer
	open   []otelCall
}

type otelCall struct {
	ctx  context.Context
	span trace.Span
}

// NewOpenTelemetryAnnotator returns a profiler which records a span for each
// function call as a child of the span in parentContext.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		root: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	if p.root == nil {
		return errors.New("spans can only be appended to a context linked to opentelemetry")
	}
	tracerName, ok := p.root.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = DefaultTracerName
	}
	p.tracer = otel.GetTracerProvider().Tracer(tracerName)
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete ends spans left open by calls which never returned, innermost
// first.
func (p *otelAnnotator) Complete() error {
	for i := len(p.open) - 1; i >= 0; i-- {
		p.open[i].span.End()
	}
	p.open = nil
	p.enabled = false
	return nil
}

func (p *otelAnnotator) parent() context.Context {
	if len(p.open) == 0 {
		return p.root
	}
	return p.open[len(p.open)-1].ctx
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, name := p.prettyFunName(fun)
	ctx, span := p.tracer.Start(p.parent(), label,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(p.callAttributes(fun, name)...))
	p.open = append(p.open, otelCall{ctx: ctx, span: span})
	depth := len(p.open)
	return func() {
		span.End()
		if len(p.open) >= depth {
			p.open = p.open[:depth-1]
		}
	}
}

// callAttributes describes fun with the code.* conventions and its clove
// kind.  The call depth counts traced calls only.
func (p *otelAnnotator) callAttributes(fun *lisp.LVal, name string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeNamespace(fun.Package()),
		semconv.CodeFunction(name),
		AttrFunctionKind.String(funKind(fun)),
		AttrCallDepth.Int(len(p.open) + 1),
	}
	if fd := fun.FunData(); fd != nil && fd.Builtin != nil {
		attrs = append(attrs, AttrFunctionPure.Bool(fd.Pure))
	}
	if loc := getSourceLoc(fun); loc != nil {
		attrs = append(attrs,
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
			semconv.CodeColumn(loc.Col),
		)
	}
	return attrs
}

func funKind(fun *lisp.LVal) string {
	if fd := fun.FunData(); fd != nil && fd.Builtin != nil {
		return "builtin"
	}
	return "function"
}
