// Copyright © 2018 The ELPS authors

package profiler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/luthersystems/clove/lisp/x/profiler"
	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"
)

// spanRecorder collects the names and attributes of exported spans.
type spanRecorder struct {
	mu    sync.Mutex
	names []string
	attrs []map[string]interface{}
}

func (r *spanRecorder) ExportSpan(sd *trace.SpanData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, sd.Name)
	r.attrs = append(r.attrs, sd.Attributes)
}

func TestNewOpenCensusAnnotator(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	rec := &spanRecorder{}
	trace.RegisterExporter(rec)
	t.Cleanup(func() { trace.UnregisterExporter(rec) })

	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenCensusAnnotator(env.Runtime, context.Background(), profiler.WithBuiltinFilter()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{
		"user/add-it",
		"user/recurse-it",
		"user/recurse-it",
		"user/recurse-it",
		"user/recurse-it",
		"user/add-it",
	}, rec.names)
}

func TestOpenCensusCallAttributes(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	rec := &spanRecorder{}
	trace.RegisterExporter(rec)
	t.Cleanup(func() { trace.UnregisterExporter(rec) })

	env := newEnv(t)
	evalProfiled(t, env, profiler.NewOpenCensusAnnotator(env.Runtime, context.Background(), profiler.WithBuiltinFilter()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if assert.Len(t, rec.attrs, 6) {
		// Spans export innermost first.
		first := rec.attrs[0]
		assert.Equal(t, "user", first["namespace"])
		assert.Equal(t, "user/add-it", first["function"])
		assert.Equal(t, "function", first[string(profiler.AttrFunctionKind)])
		assert.Equal(t, int64(5), first[string(profiler.AttrCallDepth)])
		assert.Equal(t, int64(1), rec.attrs[4][string(profiler.AttrCallDepth)])
	}
}
