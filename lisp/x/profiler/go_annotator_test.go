// Copyright © 2018 The ELPS authors

package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/clove/lisp/x/profiler"
)

func TestNewPprofAnnotator(t *testing.T) {
	env := newEnv(t)
	evalProfiled(t, env, profiler.NewPprofAnnotator(env.Runtime, context.Background()))
}
