// Copyright © 2018 The ELPS authors

package cloveutil_test

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
	"github.com/luthersystems/clove/cloveutil"
	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hostNs struct {
	inits int
}

func (*hostNs) NamespaceName() string { return "host" }

func (h *hostNs) NamespaceInit(env *lisp.LEnv) *lisp.LVal {
	h.inits++
	if env.Namespace().Name != "host" {
		return env.Errorf("init ran in namespace %s", env.Namespace().Name)
	}
	return lisp.Nil()
}

func (*hostNs) Builtins() []*lisp.LBuiltinDef {
	return []*lisp.LBuiltinDef{
		cloveutil.Function("greet", 1, 1, func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			return lisp.String("hello " + args[0].Display())
		}, "Greets someone."),
	}
}

func (*hostNs) Values() map[string]*lisp.LVal {
	return map[string]*lisp.LVal{"answer": lisp.Int(42)}
}

type coreNs struct{}

func (coreNs) NamespaceName() string { return lisp.CoreNamespace }

func TestWithNamespaces(t *testing.T) {
	host := &hostNs{}
	env, err := clovetest.NewEnv(t, cloveutil.WithNamespaces(host))
	require.NoError(t, err)
	assert.Equal(t, 1, host.inits)
	assert.Equal(t, lisp.UserNamespace, env.Namespace().Name)

	assert.Equal(t, `"hello world"`, env.EvalString(`(host/greet "world")`, "test").String())
	assert.Equal(t, "42", env.EvalString(`host/answer`, "test").String())
}

func TestSystemNamespaceRejected(t *testing.T) {
	_, err := clovetest.NewEnv(t, cloveutil.WithNamespaces(coreNs{}))
	require.Error(t, err)
	var lerr *lisp.ErrorVal
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, lisp.CondSecurity, lerr.Condition())
}
