// Copyright © 2018 The ELPS authors

package lisp

import (
	"sync/atomic"
)

// LBuiltin is a function implemented in Go.  Arguments are evaluated before
// the function is called.
type LBuiltin func(env *LEnv, args []*LVal) *LVal

// LBuiltinDef describes a builtin function installed in the core namespace.
type LBuiltinDef struct {
	Name string
	// MinArgs is the minimum number of arguments.  MaxArgs is the maximum
	// number of arguments or a negative number when the function is
	// variadic.
	MinArgs int
	MaxArgs int
	Fun     LBuiltin
	Doc     string
	// Redefinable builtins may be replaced by user definitions with the same
	// unqualified name.
	Redefinable bool
	// Pure builtins have no side effects.
	Pure bool
}

// BuiltinTable is a collection of builtin function definitions.
type BuiltinTable []*LBuiltinDef

// Lookup returns the definition called name.
func (t BuiltinTable) Lookup(name string) *LBuiltinDef {
	for _, def := range t {
		if def.Name == name {
			return def
		}
	}
	return nil
}

// Value returns a function value for def, defined in namespace ns.
func (def *LBuiltinDef) Value(ns string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LFun,
		Native: &LFunData{
			Builtin: def.Fun,
			Name:    def.Name,
			Ns:      ns,
			Doc:     def.Doc,
			MinArgs: def.MinArgs,
			MaxArgs: def.MaxArgs,
			Pure:    def.Pure,
		},
	}
}

// Arity is one parameter list and body of a function.
type Arity struct {
	Params []*LVal
	// Rest is the pattern bound to the remaining arguments, or nil.
	Rest *LVal
	// Pre holds precondition expressions.
	Pre  []*LVal
	Body []*LVal
	// simple is true when every parameter is a plain symbol.
	simple bool
}

// accepts returns true if the arity can be called with n arguments.
func (a *Arity) accepts(n int) bool {
	if a.Rest != nil {
		return n >= len(a.Params)
	}
	return n == len(a.Params)
}

// slots returns the patterns rebound by recur.
func (a *Arity) slots() []*LVal {
	if a.Rest == nil {
		return a.Params
	}
	slots := make([]*LVal, len(a.Params)+1)
	copy(slots, a.Params)
	slots[len(a.Params)] = a.Rest
	return slots
}

// LFunData is the function data of an LFun.  A function is either a builtin
// (Builtin is not nil) or a closure over Env with one or more arities.
type LFunData struct {
	Builtin LBuiltin
	Env     *LEnv
	Name    string
	Ns      string
	Doc     string
	Arities []*Arity
	// Variadic is the arity accepting a rest argument, if any.
	Variadic *Arity
	// MinArgs and MaxArgs bound the argument count of a builtin.
	MinArgs int
	MaxArgs int
	Pure    bool

	namespace *Namespace
}

// QualifiedName returns the name of the function qualified by its
// namespace.
func (fd *LFunData) QualifiedName() string {
	name := fd.Name
	if name == "" {
		name = "anonymous"
	}
	if fd.Ns == "" {
		return name
	}
	return fd.Ns + "/" + name
}

func (fd *LFunData) arity(n int) *Arity {
	for _, a := range fd.Arities {
		if a.accepts(n) {
			return a
		}
	}
	if fd.Variadic != nil && fd.Variadic.accepts(n) {
		return fd.Variadic
	}
	return nil
}

func (fd *LFunData) named(ns, name string) *LFunData {
	cp := *fd
	cp.Ns = ns
	cp.Name = name
	return &cp
}

// NewBuiltin returns a builtin function value which is not installed in any
// namespace.  A negative max allows any number of arguments beyond min.
func NewBuiltin(name string, min, max int, fn LBuiltin) *LVal {
	def := &LBuiltinDef{Name: name, MinArgs: min, MaxArgs: max, Fun: fn}
	return def.Value("")
}

// MultiFnData is the storage of an LMultiFn.
type MultiFnData struct {
	Name     string
	Ns       string
	Dispatch *LVal
	methods  *MapData
}

// MultiFnData returns the storage of an LMultiFn.
func (v *LVal) MultiFnData() *MultiFnData {
	md, _ := v.Native.(*MultiFnData)
	return md
}

// MultiFn returns a multi-function dispatching on the result of dispatch.
func MultiFn(ns, name string, dispatch *LVal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LMultiFn,
		Native: &MultiFnData{
			Name:     name,
			Ns:       ns,
			Dispatch: dispatch,
			methods:  NewMapData(MutableKind),
		},
	}
}

// AddMethod associates fun with the dispatch value val.
func (md *MultiFnData) AddMethod(val, fun *LVal) {
	md.methods.Assoc(val, fun)
}

// Method returns the method for dispatch value val, falling back to the
// method registered for :default.
func (md *MultiFnData) Method(val *LVal) (*LVal, bool) {
	if fun, ok := md.methods.Get(val); ok {
		return fun, true
	}
	return md.methods.Get(Keyword("default"))
}

// AtomData is the storage of an LAtom.
type AtomData struct {
	p atomic.Pointer[LVal]
}

// Atom returns a new atom holding v.
func Atom(v *LVal) *LVal {
	data := &AtomData{}
	data.p.Store(v)
	return &LVal{
		Source: nativeSource(),
		Type:   LAtom,
		Native: data,
	}
}

// AtomData returns the storage of an LAtom.
func (v *LVal) AtomData() *AtomData {
	a, _ := v.Native.(*AtomData)
	return a
}

// Deref returns the current value of the atom.
func (a *AtomData) Deref() *LVal {
	return a.p.Load()
}

// Reset stores v in the atom.
func (a *AtomData) Reset(v *LVal) {
	a.p.Store(v)
}

// CompareAndSet stores v in the atom if it currently holds old.
func (a *AtomData) CompareAndSet(old, v *LVal) bool {
	return a.p.CompareAndSwap(old, v)
}
