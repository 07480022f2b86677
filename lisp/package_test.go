// Copyright © 2018 The ELPS authors

package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceRegistry(t *testing.T) {
	r := NewRegistry()
	user := r.ComputeIfAbsent(UserNamespace)
	assert.Same(t, user, r.ComputeIfAbsent(UserNamespace))
	assert.Nil(t, r.Get("missing"))

	user.Define(&Var{Name: "x", Value: Int(1), Redefinable: true})
	v, ok := user.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "user/x", v.QualifiedName())

	user.SetValue(v, Int(2))
	v2, ok := user.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "2", v2.Value.String())
	assert.Equal(t, "1", v.Value.String())

	user.Define(&Var{Name: "a"})
	assert.Equal(t, []string{"a", "x"}, user.Names())
	assert.True(t, user.Unmap("a"))
	assert.False(t, user.Unmap("a"))

	user.Import("b.Type")
	user.Import("a.Type")
	user.Import("b.Type")
	assert.Equal(t, []string{"a.Type", "b.Type"}, user.Imports())

	assert.True(t, r.IsSystem(CoreNamespace))
	assert.False(t, r.IsSystem(UserNamespace))
	r.Seal()
	assert.True(t, r.Get(CoreNamespace).Sealed())
	assert.False(t, user.Sealed())
	assert.Error(t, r.Remove(CoreNamespace))
	assert.NoError(t, r.Remove(UserNamespace))
	assert.NoError(t, r.Remove("missing"))
	assert.Nil(t, r.Get(UserNamespace))
	assert.Contains(t, r.Names(), CoreNamespace)
}
