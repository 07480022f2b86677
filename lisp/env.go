// Copyright © 2018 The ELPS authors

package lisp

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LEnv is a lisp environment.  Environments form a chain of lexical scopes.
// Every environment in a chain shares the Runtime while the Thread belongs to
// the evaluation currently using the environment.
type LEnv struct {
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
	Thread  *Thread
}

// NewEnv returns a child scope of parent.
func NewEnv(parent *LEnv) *LEnv {
	return newEnvN(parent, 0)
}

// newEnvN creates a child LEnv with its Scope map pre-sized to hold n
// bindings.
func newEnvN(parent *LEnv, n int) *LEnv {
	return &LEnv{
		Scope:   make(map[string]*LVal, n),
		Parent:  parent,
		Runtime: parent.Runtime,
		Thread:  parent.Thread,
	}
}

// closureEnv returns the scope in which a closure defined in def runs when
// it is called from env.
func (env *LEnv) closureEnv(def *LEnv, n int) *LEnv {
	return &LEnv{
		Scope:   make(map[string]*LVal, n),
		Parent:  def,
		Runtime: env.Runtime,
		Thread:  env.Thread,
	}
}

// root returns an environment without lexical bindings sharing env's
// thread.
func (env *LEnv) root() *LEnv {
	return &LEnv{
		Runtime: env.Runtime,
		Thread:  env.Thread,
	}
}

// GenSym returns a new unique symbol.
func (env *LEnv) GenSym() *LVal {
	return Symbol(env.Runtime.GenSym())
}

// Namespace returns the current namespace of the env's thread.
func (env *LEnv) Namespace() *Namespace {
	return env.Thread.Ns
}

// InNamespace makes the namespace called name current, creating it if
// necessary.
func (env *LEnv) InNamespace(name string) *LVal {
	ns := env.Runtime.Registry.ComputeIfAbsent(name)
	if ns.Sealed() {
		return env.securityViolation("namespace %s is sealed", name)
	}
	env.Thread.Ns = ns
	return Symbol(name)
}

// Get returns the value bound to the symbol k.  Unqualified symbols resolve
// through lexical scopes, then the current namespace, then the core
// namespace.  Get returns an unresolved-symbol error if k is not bound.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "not a symbol: %v", k)
	}
	if k.Ns == "" {
		if v, ok := env.lookupLocal(k.Str); ok {
			return v
		}
	}
	v := env.resolveVar(k)
	if v == nil {
		return env.ErrorConditionf(CondUnresolvedSymbol, "unable to resolve symbol: %s", k.QualifiedName())
	}
	return env.varValue(v)
}

// GetGlobal returns the global value of k ignoring lexical bindings.
func (env *LEnv) GetGlobal(k *LVal) *LVal {
	v := env.resolveVar(k)
	if v == nil {
		return env.ErrorConditionf(CondUnresolvedSymbol, "unable to resolve symbol: %s", k.QualifiedName())
	}
	return env.varValue(v)
}

func (env *LEnv) lookupLocal(name string) (*LVal, bool) {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// ResolveVar returns the global var named by the symbol k, or nil.
func (env *LEnv) ResolveVar(k *LVal) *Var {
	return env.resolveVar(k)
}

func (env *LEnv) resolveVar(k *LVal) *Var {
	reg := env.Runtime.Registry
	cur := env.Thread.Ns
	if k.Ns != "" {
		ns := reg.Get(k.Ns)
		if ns == nil {
			return nil
		}
		v, ok := ns.Lookup(k.Str)
		if !ok || (v.Private && ns != cur) {
			return nil
		}
		return v
	}
	if cur != nil {
		if v, ok := cur.Lookup(k.Str); ok {
			return v
		}
	}
	if core := reg.Get(CoreNamespace); core != nil && core != cur {
		if v, ok := core.Lookup(k.Str); ok && !v.Private {
			return v
		}
	}
	return nil
}

func (env *LEnv) varValue(v *Var) *LVal {
	if v.Dynamic {
		if val, ok := env.Thread.Dynamic(v.QualifiedName()); ok {
			return val
		}
	}
	return v.Value
}

// Put binds k to v in the innermost lexical scope.
func (env *LEnv) Put(k, v *LVal) {
	if env.Scope == nil {
		env.Scope = make(map[string]*LVal)
	}
	env.Scope[k.Str] = v
}

// PutAll binds each symbol of ks to the corresponding value of vs.
func (env *LEnv) PutAll(ks, vs []*LVal) *LVal {
	if len(ks) != len(vs) {
		return env.ErrorConditionf(CondArityError, "%d values given for %d symbols", len(vs), len(ks))
	}
	for i := range ks {
		env.Put(ks[i], vs[i])
	}
	return Nil()
}

// AddLocalVars destructures each pattern in pairs against the value
// following it and binds the results in the innermost scope.
func (env *LEnv) AddLocalVars(pairs ...*LVal) *LVal {
	if len(pairs)%2 != 0 {
		return env.ErrorConditionf(CondArityError, "odd number of binding forms")
	}
	for i := 0; i < len(pairs); i += 2 {
		if lerr := env.Destructure(pairs[i], pairs[i+1]); lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

// VarFlag modifies the var created by PutGlobal.
type VarFlag uint8

// VarFlag values
const (
	VarDynamic VarFlag = 1 << iota
	VarFixed
	VarPrivate
)

// PutGlobal binds k to v in the current namespace and returns the qualified
// symbol naming the binding.  Metadata attached to k is stored on the var.
// PutGlobal refuses to replace a fixed var, to write into a sealed
// namespace, or to define a symbol qualified with another namespace.
func (env *LEnv) PutGlobal(k, v *LVal, flags VarFlag) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "cannot define a non-symbol: %v", GetType(k))
	}
	ns := env.Thread.Ns
	if k.Ns != "" && k.Ns != ns.Name {
		return env.securityViolation("cannot define %s from namespace %s", k.QualifiedName(), ns.Name)
	}
	if ns.Sealed() {
		return env.securityViolation("cannot define %s/%s in sealed namespace %s", ns.Name, k.Str, ns.Name)
	}
	if old, ok := ns.Lookup(k.Str); ok && !old.Redefinable {
		return env.securityViolation("%s is not redefinable", old.QualifiedName())
	}
	if k.Ns == "" && ns.Name != CoreNamespace {
		if core := env.Runtime.Registry.Get(CoreNamespace); core != nil {
			if old, ok := core.Lookup(k.Str); ok && !old.Redefinable {
				return env.securityViolation("%s is not redefinable", old.QualifiedName())
			}
		}
	}
	meta := k.Meta
	if meta != nil && meta.Type == LMap {
		if True(k.MetaGet("private")) {
			flags |= VarPrivate
		}
		if True(k.MetaGet("dynamic")) {
			flags |= VarDynamic
		}
	}
	ns.Define(&Var{
		Name:        k.Str,
		Value:       v,
		Meta:        meta,
		Dynamic:     flags&VarDynamic != 0,
		Redefinable: flags&VarFixed == 0,
		Private:     flags&VarPrivate != 0,
	})
	return QualifiedSymbol(ns.Name, k.Str)
}

func (env *LEnv) securityViolation(format string, v ...interface{}) *LVal {
	lerr := env.ErrorConditionf(CondSecurity, format, v...)
	env.Runtime.log().WithFields(logrus.Fields{
		"namespace": env.Thread.Ns.Name,
		"reason":    lerr.ErrorMessage(),
	}).Warn("security violation")
	return lerr
}

// Error returns an LError value wrapping err, or an error with a message
// rendered from v.
//
// Unlike the exported functions, LEnv methods creating errors copy the
// thread's call stack into the error.
func (env *LEnv) Error(v ...interface{}) *LVal {
	if len(v) == 1 {
		if err, ok := v[0].(error); ok {
			return env.goError(err)
		}
	}
	return env.ErrorConditionf(CondError, "%s", fmt.Sprint(v...))
}

// ErrorCondition returns an LError with the given condition and a message
// rendered from v.
func (env *LEnv) ErrorCondition(condition string, v ...interface{}) *LVal {
	return env.ErrorConditionf(condition, "%s", fmt.Sprint(v...))
}

// Errorf returns an LError value with a formatted error message.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError value with the given condition and a
// message rendered using fmt.Sprintf.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: env.Thread.Loc,
		Type:   LError,
		Str:    condition,
		Native: env.Thread.Stack.Copy(),
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

func (env *LEnv) goError(err error) *LVal {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return (*LVal)(lerr)
	}
	var overflow *StackOverflowError
	if errors.As(err, &overflow) {
		return env.ErrorConditionf(CondStackOverflow, "%v", err)
	}
	return env.ErrorConditionf(CondError, "%v", err)
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location when lerr was created without them.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	if lerr.CallStack() == nil {
		lerr.Native = env.Thread.Stack.Copy()
	}
	if lerr.Source == nil || lerr.Source.Pos < 0 {
		lerr.Source = env.Thread.Loc
	}
}

// Eval evaluates v in the context (scope) of env and returns the resulting
// LVal.  Eval does not modify v.
func (env *LEnv) Eval(v *LVal) *LVal {
	return env.eval(v, nil)
}

// FunCall invokes fun with the evaluated arguments args.  Functions, multi
// functions, keywords, maps, sets and vectors may be called.
func (env *LEnv) FunCall(fun *LVal, args []*LVal) *LVal {
	switch fun.Type {
	case LFun:
		if fun.IsMacro() {
			return env.ErrorConditionf(CondNotApplicable, "macro %s cannot be applied", fun.FunData().QualifiedName())
		}
		return env.funCall(fun, args)
	case LMultiFn:
		return env.multiCall(fun, args)
	case LKeyword, LMap, LSet, LVector:
		return env.applicable(fun, args)
	}
	return env.ErrorConditionf(CondNotApplicable, "value of type %s is not applicable", fun.Type)
}

// apply evaluates the elements of the list form and calls its head with the
// remaining values.
func (env *LEnv) apply(form *LVal) *LVal {
	cells := form.Items()
	fun := env.eval(cells[0], nil)
	if fun.Type == LError {
		return fun
	}
	args := make([]*LVal, len(cells)-1)
	for i, expr := range cells[1:] {
		v := env.eval(expr, nil)
		if v.Type == LError {
			return v
		}
		args[i] = v
	}
	env.Thread.Loc = form.Source
	return env.FunCall(fun, args)
}

// funCall invokes the LFun fun.  The interceptor approves the call before a
// frame is pushed and the time budget and interrupt flag are checked again
// when the call returns.
func (env *LEnv) funCall(fun *LVal, args []*LVal) *LVal {
	rt := env.Runtime
	th := env.Thread
	fd := fun.FunData()
	name := fd.QualifiedName()
	if err := rt.Interceptor.ApproveCall(name); err != nil {
		return env.securityViolation("%v", err)
	}
	if lerr := env.checkBudget(); lerr != nil {
		return lerr
	}
	loc := th.Loc
	if err := th.Stack.Push(loc, name, fd.Ns); err != nil {
		return env.goError(err)
	}
	r := env.invoke(fun, fd, args)
	th.Loc = loc
	if th.Interrupted() {
		return env.ErrorConditionf(CondInterrupted, "evaluation interrupted")
	}
	if lerr := env.checkBudget(); lerr != nil {
		return lerr
	}
	return r
}

func (env *LEnv) invoke(fun *LVal, fd *LFunData, args []*LVal) *LVal {
	th := env.Thread
	defer th.Stack.Pop()
	if p := env.Runtime.Profiler; p != nil && p.IsEnabled() {
		defer p.Start(fun)()
	}
	if fd.Builtin != nil {
		if len(args) < fd.MinArgs || (fd.MaxArgs >= 0 && len(args) > fd.MaxArgs) {
			return env.arityError(fd, len(args))
		}
		r := fd.Builtin(env, args)
		if r.Type == LError {
			env.ErrorAssociate(r)
		}
		return r
	}
	arity := fd.arity(len(args))
	if arity == nil {
		return env.arityError(fd, len(args))
	}
	outer := th.Ns
	if fd.namespace != nil {
		th.Ns = fd.namespace
	}
	defer func() { th.Ns = outer }()
	fenv := env.closureEnv(fd.Env, len(arity.Params)+1)
	if lerr := fenv.bindArity(arity, args); lerr.Type == LError {
		return lerr
	}
	if len(arity.Pre) > 0 {
		if lerr := fenv.checkPre(arity.Pre); lerr.Type == LError {
			return lerr
		}
	}
	rp := &recursionPoint{slots: arity.slots(), simple: arity.simple, body: arity.Body, env: fenv}
	return fenv.evalBody(arity.Body, rp)
}

func (env *LEnv) arityError(fd *LFunData, n int) *LVal {
	return env.ErrorConditionf(CondArityError, "%s: wrong number of arguments (%d)", fd.QualifiedName(), n)
}

func (env *LEnv) bindArity(arity *Arity, args []*LVal) *LVal {
	if arity.simple {
		for i, p := range arity.Params {
			env.Scope[p.Str] = args[i]
		}
	} else {
		for i, p := range arity.Params {
			if lerr := env.Destructure(p, args[i]); lerr.Type == LError {
				return lerr
			}
		}
	}
	if arity.Rest == nil {
		return Nil()
	}
	rest := Nil()
	if len(args) > len(arity.Params) {
		rest = List(args[len(arity.Params):]...)
	}
	return env.Destructure(arity.Rest, rest)
}

func (env *LEnv) checkPre(pre []*LVal) *LVal {
	penv := NewEnv(env)
	for _, expr := range pre {
		ok := penv.eval(expr, nil)
		if ok.Type == LError {
			return ok
		}
		if !True(ok) {
			return env.ErrorConditionf(CondAssertionFailure, "precondition failed: %v", expr)
		}
	}
	return Nil()
}

func (env *LEnv) checkBudget() *LVal {
	rem, bounded := env.Runtime.Interceptor.RemainingBudget(env.Thread.start)
	if bounded && rem <= 0 {
		return env.ErrorConditionf(CondInterrupted, "execution time budget exhausted after %v", time.Since(env.Thread.start).Round(time.Millisecond))
	}
	return nil
}

func (env *LEnv) multiCall(fun *LVal, args []*LVal) *LVal {
	md := fun.MultiFnData()
	val := env.FunCall(md.Dispatch, args)
	if val.Type == LError {
		return val
	}
	method, ok := md.Method(val)
	if !ok {
		return env.Errorf("no method in multi-function %s/%s for dispatch value: %v", md.Ns, md.Name, val)
	}
	return env.FunCall(method, args)
}

// applicable implements calls to collections and keywords.
func (env *LEnv) applicable(fun *LVal, args []*LVal) *LVal {
	if len(args) < 1 || len(args) > 2 {
		return env.ErrorConditionf(CondArityError, "%s called with %d arguments", fun.Type, len(args))
	}
	dflt := Nil()
	if len(args) == 2 {
		dflt = args[1]
	}
	switch fun.Type {
	case LKeyword:
		return lookup(args[0], fun, dflt)
	case LMap, LSet:
		return lookup(fun, args[0], dflt)
	case LVector:
		if args[0].Type != LLong {
			return env.ErrorConditionf(CondTypeError, "vector index is not a long: %v", GetType(args[0]))
		}
		v, ok := fun.Nth(int(args[0].Int))
		if !ok {
			if len(args) == 2 {
				return dflt
			}
			return env.Errorf("index out of bounds: %d", args[0].Int)
		}
		return v
	}
	return env.ErrorConditionf(CondNotApplicable, "value of type %s is not applicable", fun.Type)
}

// lookup returns the value associated with key in coll.  Records look up
// their fields.
func lookup(coll, key, dflt *LVal) *LVal {
	switch coll.Type {
	case LMap:
		if v, ok := coll.MapData().Get(key); ok {
			return v
		}
	case LSet:
		if coll.SetData().Contains(key) {
			return key
		}
	case LVector:
		if key.Type == LLong {
			if v, ok := coll.Nth(int(key.Int)); ok {
				return v
			}
		}
	case LTaggedVal:
		return lookup(coll.UserData(), key, dflt)
	}
	return dflt
}
