// Copyright © 2018 The ELPS authors

// Package cloveutil helps hosts implement namespaces in Go.
package cloveutil

import (
	"github.com/luthersystems/clove/lisp"
)

// Function is a helper to construct builtins.
func Function(name string, minArgs, maxArgs int, fun lisp.LBuiltin, doc string) *lisp.LBuiltinDef {
	return &lisp.LBuiltinDef{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Fun:     fun,
		Doc:     doc,
	}
}

// Namespace is a namespace implemented in Go.
type Namespace interface {
	NamespaceName() string
}

// NamespaceInit allows initialization of a namespace implemented in Go.  The
// thread evaluating the init function is in the namespace.
type NamespaceInit interface {
	Namespace
	NamespaceInit(env *lisp.LEnv) *lisp.LVal
}

// NamespaceBuiltins retrieves the functions a namespace implemented in Go
// defines.
type NamespaceBuiltins interface {
	Namespace
	Builtins() []*lisp.LBuiltinDef
}

// NamespaceValues retrieves the constant vars a namespace implemented in Go
// defines.
type NamespaceValues interface {
	Namespace
	Values() map[string]*lisp.LVal
}

// WithNamespaces returns a Config defining each namespace in nss.
func WithNamespaces(nss ...Namespace) lisp.Config {
	return func(env *lisp.LEnv) *lisp.LVal {
		for _, ns := range nss {
			if lerr := Load(env, ns); lerr.Type == lisp.LError {
				return lerr
			}
		}
		return lisp.Nil()
	}
}

// Load defines the namespace implemented by ns.  The thread's namespace is
// restored afterwards.  System namespaces can never be defined.
func Load(env *lisp.LEnv, ns Namespace) *lisp.LVal {
	rt := env.Runtime
	name := ns.NamespaceName()
	if name == "" {
		return env.ErrorConditionf(lisp.CondTypeError, "namespace has no name")
	}
	if rt.Registry.IsSystem(name) {
		return env.ErrorConditionf(lisp.CondSecurity, "cannot define system namespace: %s", name)
	}
	target := rt.Registry.ComputeIfAbsent(name)
	if init, ok := ns.(NamespaceInit); ok {
		saved := env.Thread.Ns
		env.Thread.Ns = target
		lerr := init.NamespaceInit(env)
		env.Thread.Ns = saved
		if lerr.Type == lisp.LError {
			return lerr
		}
	}
	if nb, ok := ns.(NamespaceBuiltins); ok {
		for _, def := range nb.Builtins() {
			var meta *lisp.LVal
			if def.Doc != "" {
				meta = lisp.HashMap(lisp.Keyword("doc"), lisp.String(def.Doc))
			}
			target.Define(&lisp.Var{
				Name:        def.Name,
				Value:       def.Value(name),
				Meta:        meta,
				Redefinable: def.Redefinable,
			})
		}
	}
	if nv, ok := ns.(NamespaceValues); ok {
		for k, v := range nv.Values() {
			target.Define(&lisp.Var{Name: k, Value: v})
		}
	}
	return lisp.Nil()
}
