// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"sort"
	"sync"
)

// Namespaces with well-known names.
const (
	CoreNamespace = "core"
	UserNamespace = "user"
)

// SystemNamespaces are reserved.  They are sealed once an environment
// finishes bootstrapping and refuse any further modification.
var SystemNamespaces = []string{CoreNamespace}

// Var is a global binding of a namespace.
type Var struct {
	// Ns and Name identify the var.
	Ns   string
	Name string
	// Value is the root value of the var.  Dynamic rebindings are held by a
	// Thread and never modify Value.
	Value *LVal
	// Meta is the metadata map attached when the var was defined.
	Meta *LVal
	// Dynamic vars may be rebound with binding and set!.
	Dynamic bool
	// Redefinable is false for vars which must never be replaced.
	Redefinable bool
	// Private vars do not resolve from other namespaces.
	Private bool
}

// QualifiedName returns ns/name.
func (v *Var) QualifiedName() string {
	return v.Ns + "/" + v.Name
}

// Namespace is a named table of global vars.
type Namespace struct {
	Name   string
	mu     sync.RWMutex
	vars   map[string]*Var
	imp    []string
	sealed bool
}

// NewNamespace initializes and returns a namespace with the given name.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name: name,
		vars: make(map[string]*Var),
	}
}

// Lookup returns the var bound to name.
func (ns *Namespace) Lookup(name string) (*Var, bool) {
	ns.mu.RLock()
	v, ok := ns.vars[name]
	ns.mu.RUnlock()
	return v, ok
}

// Define binds v in the namespace, replacing any previous var with the same
// name.  Define performs no access checks.
func (ns *Namespace) Define(v *Var) {
	v.Ns = ns.Name
	ns.mu.Lock()
	ns.vars[v.Name] = v
	ns.mu.Unlock()
}

// Unmap removes the var bound to name.
func (ns *Namespace) Unmap(name string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	_, ok := ns.vars[name]
	delete(ns.vars, name)
	return ok
}

// Names returns the sorted names of all vars in the namespace.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	names := make([]string, 0, len(ns.vars))
	for name := range ns.vars {
		names = append(names, name)
	}
	ns.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Import records an opaque host type name.
func (ns *Namespace) Import(name string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for _, s := range ns.imp {
		if s == name {
			return
		}
	}
	ns.imp = append(ns.imp, name)
	sort.Strings(ns.imp)
}

// Imports returns the imported host type names.
func (ns *Namespace) Imports() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return append([]string(nil), ns.imp...)
}

// Sealed returns true if the namespace refuses modification.
func (ns *Namespace) Sealed() bool {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.sealed
}

func (ns *Namespace) seal() {
	ns.mu.Lock()
	ns.sealed = true
	ns.mu.Unlock()
}

// NamespaceRegistry maps namespace names to namespaces.
type NamespaceRegistry struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
	system     map[string]bool
}

// NewRegistry initializes and returns a new NamespaceRegistry.
func NewRegistry() *NamespaceRegistry {
	r := &NamespaceRegistry{
		namespaces: make(map[string]*Namespace),
		system:     make(map[string]bool),
	}
	for _, name := range SystemNamespaces {
		r.system[name] = true
	}
	return r
}

// ComputeIfAbsent returns the namespace called name, creating it if needed.
func (r *NamespaceRegistry) ComputeIfAbsent(name string) *Namespace {
	r.mu.RLock()
	ns, ok := r.namespaces[name]
	r.mu.RUnlock()
	if ok {
		return ns
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ns, ok = r.namespaces[name]; ok {
		return ns
	}
	ns = NewNamespace(name)
	r.namespaces[name] = ns
	return ns
}

// Get returns the namespace called name, or nil.
func (r *NamespaceRegistry) Get(name string) *Namespace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namespaces[name]
}

// Remove deletes the namespace called name.  Sealed namespaces cannot be
// removed.
func (r *NamespaceRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.namespaces[name]
	if !ok {
		return nil
	}
	if ns.Sealed() {
		return fmt.Errorf("namespace %s is sealed and cannot be removed", name)
	}
	delete(r.namespaces, name)
	return nil
}

// Names returns the sorted names of all namespaces.
func (r *NamespaceRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// IsSystem returns true if name is a reserved namespace.
func (r *NamespaceRegistry) IsSystem(name string) bool {
	return r.system[name]
}

// Seal freezes all system namespaces.
func (r *NamespaceRegistry) Seal() {
	for name := range r.system {
		r.ComputeIfAbsent(name).seal()
	}
}

// SetValue replaces the root value of v.  Vars are never modified in place so
// a new var holding val is bound in v's place.
func (ns *Namespace) SetValue(v *Var, val *LVal) {
	nv := *v
	nv.Value = val
	ns.mu.Lock()
	ns.vars[v.Name] = &nv
	ns.mu.Unlock()
}
