// Copyright © 2018 The ELPS authors

package profiler

import (
	"bytes"
	"context"
	"runtime/pprof"
	"testing"

	"github.com/luthersystems/clove/clovetest"
	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPprofLabels(t *testing.T) {
	var p *pprofAnnotator
	type frame struct{ function, namespace, request string }
	var seen []frame
	capture := &lisp.LBuiltinDef{
		Name:    "capture-labels",
		MinArgs: 0,
		MaxArgs: 0,
		Fun: func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			for _, ctx := range p.labels {
				fn, _ := pprof.Label(ctx, LabelFunction)
				ns, _ := pprof.Label(ctx, LabelNamespace)
				req, _ := pprof.Label(ctx, "request")
				seen = append(seen, frame{fn, ns, req})
			}
			return lisp.Nil()
		},
	}
	env, err := clovetest.NewEnv(t, lisp.WithStdout(&bytes.Buffer{}), lisp.WithBuiltins(capture))
	require.NoError(t, err)

	root := pprof.WithLabels(context.Background(), pprof.Labels("request", "r1"))
	p = NewPprofAnnotator(env.Runtime, root).(*pprofAnnotator)
	require.NoError(t, p.Enable())
	v := env.EvalString(`(defn outer [] (capture-labels)) (outer)`, "labels.clv")
	require.NoError(t, lisp.GoError(v))

	require.Len(t, seen, 2)
	assert.Equal(t, "user/outer", seen[0].function)
	assert.Equal(t, "user", seen[0].namespace)
	assert.Equal(t, "core/capture-labels", seen[1].function)
	assert.Equal(t, "core", seen[1].namespace)
	assert.Equal(t, "r1", seen[0].request)
	assert.Equal(t, "r1", seen[1].request)
	assert.Empty(t, p.labels)

	require.NoError(t, p.Complete())
	assert.Empty(t, p.labels)
	assert.False(t, p.IsEnabled())
}
