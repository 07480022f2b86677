// Copyright © 2018 The ELPS authors

package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/clove/lisp/x/profiler"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newExporter(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := newExporter(t)
	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background()))
	spans := exporter.GetSpans()
	assert.GreaterOrEqual(t, len(spans), 6, "Expected a span for each call")
	names := make(map[string]bool)
	for _, s := range spans {
		names[s.Name] = true
	}
	assert.True(t, names["user/recurse-it"])
	assert.True(t, names["core/+"])
}

func TestOpenTelemetryCallAttributes(t *testing.T) {
	exporter := newExporter(t)
	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background()))
	attrs := make(map[string]map[attribute.Key]attribute.Value)
	depth := make(map[string]int64)
	for _, s := range exporter.GetSpans() {
		m := make(map[attribute.Key]attribute.Value)
		for _, kv := range s.Attributes {
			m[kv.Key] = kv.Value
		}
		attrs[s.Name] = m
		if d := m[profiler.AttrCallDepth].AsInt64(); d > depth[s.Name] {
			depth[s.Name] = d
		}
	}

	add := attrs["user/add-it"]
	if assert.NotNil(t, add) {
		assert.Equal(t, "user", add[semconv.CodeNamespaceKey].AsString())
		assert.Equal(t, "function", add[profiler.AttrFunctionKind].AsString())
		assert.Equal(t, "test.clv", add[semconv.CodeFilepathKey].AsString())
		_, pure := add[profiler.AttrFunctionPure]
		assert.False(t, pure)
	}
	plus := attrs["core/+"]
	if assert.NotNil(t, plus) {
		assert.Equal(t, "core", plus[semconv.CodeNamespaceKey].AsString())
		assert.Equal(t, "builtin", plus[profiler.AttrFunctionKind].AsString())
		assert.True(t, plus[profiler.AttrFunctionPure].AsBool())
	}
	// recurse-it calls itself three times before calling add-it.
	assert.Equal(t, int64(4), depth["user/recurse-it"])
	assert.Equal(t, int64(6), depth["core/+"])
}

func TestOpenTelemetrySpansNest(t *testing.T) {
	exporter := newExporter(t)
	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background()))
	byID := make(map[string]string)
	for _, s := range exporter.GetSpans() {
		byID[s.SpanContext.SpanID().String()] = s.Name
	}
	nested := false
	for _, s := range exporter.GetSpans() {
		if s.Name == "core/+" && byID[s.Parent.SpanID().String()] == "user/add-it" {
			nested = true
		}
	}
	assert.True(t, nested, "expected core/+ spans to be children of user/add-it")
}

func TestNewOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := newExporter(t)
	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(),
		profiler.WithDocFilter(),
		profiler.WithDocLabeler()))
	spans := exporter.GetSpans()
	if assert.Len(t, spans, 2, "Expected selective spans") {
		assert.Equal(t, "Add_It", spans[0].Name, "Expected custom label")
		assert.Equal(t, "Add_It", spans[1].Name, "Expected custom label")
	}
}

func TestOpenTelemetryAnnotatorNoContext(t *testing.T) {
	env := newEnv(t)
	p := profiler.NewOpenTelemetryAnnotator(env.Runtime, nil)
	assert.Error(t, p.Enable())
}
