// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// specialOp identifies a special form.  Unqualified symbols are assigned
// their specialOp when they are created so dispatch never compares names.
type specialOp uint8

const (
	opNone specialOp = iota
	opDo
	opIf
	opLet
	opLoop
	opRecur
	opDef
	opDefonce
	opDefDynamic
	opDefmacro
	opSet
	opDefmulti
	opDefmethod
	opDeftype
	opDeftypeP
	opDeftypeOf
	opDeftypeOr
	opNew
	opNs
	opNsRemove
	opNsUnmap
	opNamespace
	opImport
	opImports
	opResolve
	opVarGet
	opInspect
	opMacroexpand
	opMacroexpandAll
	opQuote
	opQuasiquote
	opDoc
	opModules
	opEval
	opBinding
	opBoundP
	opTry
	opTryWith
	opFn
	opLocking
	opDorun
	opDobench
)

type specialForm struct {
	op    specialOp
	name  string
	usage string
	doc   string
}

var specialForms = []specialForm{
	{opDo, "do", "(do expr*)",
		`Evaluates expressions in order and returns the value of the last.
		Returns nil if no expressions are given.`},
	{opIf, "if", "(if test then else?)",
		`Evaluates test.  If the result is neither nil nor false then is
		evaluated and returned, otherwise else is evaluated and returned.
		A missing else evaluates to nil.`},
	{opLet, "let", "(let [binding expr*] body*)",
		`Evaluates the body in a new lexical scope.  Bindings are
		established sequentially so each expression sees the bindings
		preceding it.  Binding forms may be destructuring patterns.`},
	{opLoop, "loop", "(loop [binding expr*] body*)",
		`Like let but establishes a recursion point.  A recur in tail
		position of the body rebinds the bindings and evaluates the body
		again without growing the stack.`},
	{opRecur, "recur", "(recur expr*)",
		`Evaluates the expressions and jumps to the innermost recursion
		point, rebinding its bindings to the results.  recur must appear
		in tail position and must supply one value for each binding.`},
	{opDef, "def", "(def name doc? expr?)",
		`Evaluates expr and binds the result to name in the current
		namespace.  The name may be qualified only with the current
		namespace.  Returns the qualified symbol.`},
	{opDefonce, "defonce", "(defonce name doc? expr)",
		`Like def but the binding can never be redefined.`},
	{opDefDynamic, "def-dynamic", "(def-dynamic name doc? expr)",
		`Like def but the var may be rebound on a thread with binding and
		assigned with set!.`},
	{opDefmacro, "defmacro", "(defmacro name doc? [params] body*)",
		`Defines a macro in the current namespace.  Macros receive their
		arguments unevaluated and return a form which is evaluated in
		place of the macro call.  Multiple arities may be given as in fn.`},
	{opSet, "set!", "(set! name expr)",
		`Assigns the value of expr to the dynamic var name.  When the var
		is rebound on the current thread the innermost binding is
		replaced, otherwise the root value is.`},
	{opDefmulti, "defmulti", "(defmulti name dispatch-fn)",
		`Defines a multi-function which calls dispatch-fn with its
		arguments and invokes the method registered for the result.`},
	{opDefmethod, "defmethod", "(defmethod name dispatch-val [params] body*)",
		`Registers a method of the multi-function name for dispatch-val.
		The dispatch value :default is used when no other method matches.`},
	{opDeftype, "deftype", "(deftype :name [field :type*] validator?)",
		`Defines a record type with the given fields.  Defines the
		constructor name. and the predicate name?.  Record fields are read
		by applying a keyword to the record.`},
	{opDeftypeP, "deftype?", "(deftype? :name)",
		`Returns true if a custom type called name is defined.`},
	{opDeftypeOf, "deftype-of", "(deftype-of :name :base-type validator?)",
		`Defines a wrapper type holding a single value of base-type.`},
	{opDeftypeOr, "deftype-or", "(deftype-or :name value*)",
		`Defines a choice type whose instances wrap one of the given
		values.`},
	{opNew, ".:", "(.: :name arg*)",
		`Constructs an instance of the custom type name.`},
	{opNs, "ns", "(ns name)",
		`Makes the namespace name current, creating it if it does not
		exist.  Sealed namespaces cannot be reopened.`},
	{opNsRemove, "ns-remove", "(ns-remove name)",
		`Removes the namespace name.  Sealed namespaces cannot be removed.`},
	{opNsUnmap, "ns-unmap", "(ns-unmap ns name)",
		`Removes the var name from the namespace ns.`},
	{opNamespace, "namespace", "(namespace x?)",
		`Returns the namespace of a symbol, keyword or function.  Without
		an argument the current namespace is returned.`},
	{opImport, "import", "(import name*)",
		`Records host type names in the current namespace.`},
	{opImports, "imports", "(imports ns?)",
		`Returns the host type names imported by a namespace.`},
	{opResolve, "resolve", "(resolve sym)",
		`Returns the value bound to sym or nil if sym is not bound.`},
	{opVarGet, "var-get", "(var-get sym)",
		`Returns the global value of sym ignoring local bindings, or nil.`},
	{opInspect, "inspect", "(inspect sym)",
		`Returns a map describing the var named by sym.`},
	{opMacroexpand, "macroexpand", "(macroexpand form)",
		`Expands form while its head names a macro.`},
	{opMacroexpandAll, "macroexpand-all", "(macroexpand-all form)",
		`Expands every macro call within form.`},
	{opQuote, "quote", "(quote form)",
		`Returns form unevaluated.`},
	{opQuasiquote, "quasiquote", "(quasiquote form)",
		`Returns the template form with (unquote x) replaced by the value
		of x and (splice-unquote xs) replaced by the elements of xs.
		Symbols ending in # are replaced with generated symbols.`},
	{opDoc, "doc", "(doc name)",
		`Prints the documentation of a special form, function, macro or
		var.`},
	{opModules, "modules", "(modules)",
		`Returns the names of the loaded modules.`},
	{opEval, "eval", "(eval form)",
		`Evaluates form without any local bindings.  The current namespace
		is restored afterwards.`},
	{opBinding, "binding", "(binding [name expr*] body*)",
		`Rebinds dynamic vars on the current thread while the body is
		evaluated.  The bindings are removed when the body returns, even
		if it fails.`},
	{opBoundP, "bound?", "(bound? sym)",
		`Returns true if sym is bound.`},
	{opTry, "try", "(try body* (catch :condition name handler*)* (finally expr*)?)",
		`Evaluates the body.  A failure is handled by the first catch
		clause whose condition is the failure's condition or one of its
		ancestors.  The finally clause is always evaluated.`},
	{opTryWith, "try-with", "(try-with [name expr*] body* catch* finally?)",
		`Like try but binds resources which are closed in reverse order
		after the finally clause.`},
	{opFn, "fn", "(fn name? [params] body*)",
		`Returns a function.  Multiple arities are given as lists of a
		parameter vector and body.  The parameter & introduces a rest
		parameter.  A map containing :pre preceding the body lists
		precondition expressions.`},
	{opLocking, "locking", "(locking x body*)",
		`Evaluates the body while holding the lock associated with x.`},
	{opDorun, "dorun", "(dorun n expr)",
		`Evaluates expr n times and returns the last value.`},
	{opDobench, "dobench", "(dobench n expr)",
		`Evaluates expr n times and returns a list of the elapsed
		nanoseconds of each evaluation.`},
}

var specialOps = func() map[string]specialOp {
	ops := make(map[string]specialOp, len(specialForms))
	for _, f := range specialForms {
		ops[f.name] = f.op
	}
	return ops
}()

func lookupSpecialOp(name string) specialOp {
	return specialOps[name]
}

// SpecialForms returns the names of all special forms.
func SpecialForms() []string {
	names := make([]string, len(specialForms))
	for i := range specialForms {
		names[i] = specialForms[i].name
	}
	return names
}

func specialFormDoc(name string) (specialForm, bool) {
	for _, f := range specialForms {
		if f.name == name {
			return f, true
		}
	}
	return specialForm{}, false
}

// special evaluates the special forms which never continue the trampoline.
func (env *LEnv) special(op specialOp, form *LVal) *LVal {
	args := form.Rest().Items()
	switch op {
	case opDef:
		return env.opDef(args, 0)
	case opDefonce:
		return env.opDef(args, VarFixed)
	case opDefDynamic:
		return env.opDef(args, VarDynamic)
	case opDefmacro:
		return env.opDefmacro(args)
	case opSet:
		return env.opSet(args)
	case opDefmulti:
		return env.opDefmulti(args)
	case opDefmethod:
		return env.opDefmethod(args)
	case opDeftype:
		return env.opDeftype(args)
	case opDeftypeP:
		return env.opDeftypeP(args)
	case opDeftypeOf:
		return env.opDeftypeOf(args)
	case opDeftypeOr:
		return env.opDeftypeOr(args)
	case opNew:
		return env.opNew(args)
	case opNs:
		return env.opNs(args)
	case opNsRemove:
		return env.opNsRemove(args)
	case opNsUnmap:
		return env.opNsUnmap(args)
	case opNamespace:
		return env.opNamespace(args)
	case opImport:
		return env.opImport(args)
	case opImports:
		return env.opImports(args)
	case opResolve:
		return env.opResolve(args)
	case opVarGet:
		return env.opVarGet(args)
	case opInspect:
		return env.opInspect(args)
	case opMacroexpand:
		return env.opMacroexpand(args, false)
	case opMacroexpandAll:
		return env.opMacroexpand(args, true)
	case opQuote:
		if lerr := env.checkArgs("quote", args, 1, 1); lerr != nil {
			return lerr
		}
		return args[0]
	case opQuasiquote:
		if lerr := env.checkArgs("quasiquote", args, 1, 1); lerr != nil {
			return lerr
		}
		return env.quasiquote(args[0])
	case opDoc:
		return env.opDoc(args)
	case opModules:
		if lerr := env.checkArgs("modules", args, 0, 0); lerr != nil {
			return lerr
		}
		return List(keywordList(env.Runtime.modules.names())...)
	case opEval:
		return env.opEval(args)
	case opBinding:
		return env.opBinding(args)
	case opBoundP:
		return env.opBoundP(args)
	case opTry:
		return env.opTry(args, false)
	case opTryWith:
		return env.opTry(args, true)
	case opFn:
		return env.opFn(form, args)
	case opLocking:
		return env.opLocking(args)
	case opDorun:
		return env.opDorun(args, false)
	case opDobench:
		return env.opDorun(args, true)
	}
	panic(fmt.Sprintf("unhandled special form: %v", form.First()))
}

func (env *LEnv) checkArgs(name string, args []*LVal, min, max int) *LVal {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return env.ErrorConditionf(CondArityError, "%s: wrong number of arguments (%d)", name, len(args))
	}
	return nil
}

// defName returns the symbol named by the first argument of a definition.
// The name may be wrapped in with-meta, in which case the evaluated metadata
// is attached to the symbol.
func (env *LEnv) defName(form string, name *LVal) *LVal {
	switch {
	case name.Type == LSymbol:
		return name
	case name.Type == LList && name.Len() == 3 && name.First().IsSymbol("with-meta"):
		sym, _ := name.Nth(1)
		sym = env.defName(form, sym)
		if sym.Type == LError {
			return sym
		}
		mexpr, _ := name.Nth(2)
		meta := env.eval(mexpr, nil)
		if meta.Type == LError {
			return meta
		}
		if meta.Type != LMap {
			return env.ErrorConditionf(CondTypeError, "%s: metadata is not a map: %v", form, GetType(meta))
		}
		return sym.WithMeta(mergeMeta(sym.Meta, meta))
	}
	return env.ErrorConditionf(CondTypeError, "%s: name is not a symbol: %v", form, GetType(name))
}

func mergeMeta(meta, more *LVal) *LVal {
	if meta == nil || meta.Type != LMap {
		return more
	}
	m := meta.MapData()
	for _, e := range more.MapData().Entries() {
		m = m.Assoc(e.Key, e.Val)
	}
	return mapFromData(m)
}

func withDoc(sym *LVal, doc string) *LVal {
	return sym.WithMeta(mergeMeta(sym.Meta, HashMap(Keyword("doc"), String(doc))))
}

func (env *LEnv) opDef(args []*LVal, flags VarFlag) *LVal {
	form := "def"
	switch {
	case flags&VarFixed != 0:
		form = "defonce"
	case flags&VarDynamic != 0:
		form = "def-dynamic"
	}
	if lerr := env.checkArgs(form, args, 1, 3); lerr != nil {
		return lerr
	}
	sym := env.defName(form, args[0])
	if sym.Type == LError {
		return sym
	}
	expr := Nil()
	switch len(args) {
	case 2:
		expr = args[1]
	case 3:
		if args[1].Type != LString {
			return env.ErrorConditionf(CondTypeError, "%s: docstring is not a string: %v", form, GetType(args[1]))
		}
		sym = withDoc(sym, args[1].Str)
		expr = args[2]
	}
	val := env.eval(expr, nil)
	if val.Type == LError {
		return val
	}
	val = env.nameFun(val, sym)
	return env.PutGlobal(sym, val, flags)
}

// nameFun returns a copy of an anonymous function named after sym and
// documented by its metadata.
func (env *LEnv) nameFun(val, sym *LVal) *LVal {
	if val.Type != LFun || val.FunData().Builtin != nil {
		return val
	}
	fd := val.FunData()
	doc := sym.MetaGet("doc")
	if fd.Name != "" && doc.Type != LString {
		return val
	}
	named := fd.named(fd.Ns, fd.Name)
	if named.Name == "" {
		named = fd.named(env.Thread.Ns.Name, sym.Str)
	}
	if doc.Type == LString {
		named.Doc = doc.Str
	}
	cp := *val
	cp.Native = named
	return &cp
}

func (env *LEnv) opDefmacro(args []*LVal) *LVal {
	if lerr := env.checkArgs("defmacro", args, 2, -1); lerr != nil {
		return lerr
	}
	sym := env.defName("defmacro", args[0])
	if sym.Type == LError {
		return sym
	}
	specs := args[1:]
	if specs[0].Type == LString && len(specs) > 1 {
		sym = withDoc(sym, specs[0].Str)
		specs = specs[1:]
	}
	mac := env.makeFun(sym.Str, specs)
	if mac.Type == LError {
		return mac
	}
	mac.FunType = LFunMacro
	if doc := sym.MetaGet("doc"); doc.Type == LString {
		mac.FunData().Doc = doc.Str
	}
	return env.PutGlobal(sym, mac, 0)
}

func (env *LEnv) opFn(form *LVal, args []*LVal) *LVal {
	if lerr := env.checkArgs("fn", args, 1, -1); lerr != nil {
		return lerr
	}
	name := ""
	if args[0].Type == LSymbol {
		name = args[0].Str
		args = args[1:]
	}
	fun := env.makeFun(name, args)
	if fun.Type == LError {
		return fun
	}
	fun.Source = form.Source
	return fun
}

// makeFun builds a closure over env from arity specs.  Specs are either a
// parameter vector followed by a body or a sequence of lists each holding a
// parameter vector and a body.
func (env *LEnv) makeFun(name string, specs []*LVal) *LVal {
	if len(specs) == 0 {
		return env.ErrorConditionf(CondArityError, "fn: missing parameter vector")
	}
	fenv := env
	if name != "" {
		fenv = NewEnv(env)
	}
	ns := env.Thread.Ns
	fd := &LFunData{
		Env:       fenv,
		Name:      name,
		Ns:        ns.Name,
		namespace: ns,
	}
	addArity := func(params *LVal, body []*LVal) *LVal {
		arity, lerr := env.parseArity(params, body)
		if lerr != nil {
			return lerr
		}
		if arity.Rest != nil {
			if fd.Variadic != nil {
				return env.ErrorConditionf(CondTypeError, "fn: more than one variadic arity")
			}
			fd.Variadic = arity
			return nil
		}
		for _, a := range fd.Arities {
			if len(a.Params) == len(arity.Params) {
				return env.ErrorConditionf(CondTypeError, "fn: duplicate arity with %d parameters", len(a.Params))
			}
		}
		fd.Arities = append(fd.Arities, arity)
		return nil
	}
	if specs[0].Type == LVector {
		if lerr := addArity(specs[0], specs[1:]); lerr != nil {
			return lerr
		}
	} else {
		for _, spec := range specs {
			if spec.Type != LList || spec.IsEmpty() {
				return env.ErrorConditionf(CondTypeError, "fn: invalid arity: %v", spec)
			}
			items := spec.Items()
			if lerr := addArity(items[0], items[1:]); lerr != nil {
				return lerr
			}
		}
	}
	if fd.Variadic != nil {
		for _, a := range fd.Arities {
			if len(a.Params) > len(fd.Variadic.Params) {
				return env.ErrorConditionf(CondTypeError, "fn: fixed arity with more parameters than the variadic arity")
			}
		}
	}
	fun := &LVal{
		Source: nativeSource(),
		Type:   LFun,
		Native: fd,
	}
	if name != "" {
		fenv.Scope[name] = fun
	}
	return fun
}

func (env *LEnv) parseArity(params *LVal, body []*LVal) (*Arity, *LVal) {
	if params.Type != LVector {
		return nil, env.ErrorConditionf(CondTypeError, "fn: parameters must be a vector: %v", GetType(params))
	}
	arity := &Arity{simple: true}
	cells := params.Items()
	seen := make(map[string]bool, len(cells))
	unique := func(p *LVal) *LVal {
		if p.Type != LSymbol || p.Str == "_" {
			return nil
		}
		if seen[p.Str] {
			return env.ErrorConditionf(CondTypeError, "fn: duplicate parameter %v in %v", p, params)
		}
		seen[p.Str] = true
		return nil
	}
	for i := 0; i < len(cells); i++ {
		p := cells[i]
		if p.IsSymbol("&") {
			if i != len(cells)-2 {
				return nil, env.ErrorConditionf(CondTypeError, "fn: & must be followed by exactly one parameter: %v", params)
			}
			if lerr := unique(cells[i+1]); lerr != nil {
				return nil, lerr
			}
			arity.Rest = cells[i+1]
			break
		}
		switch p.Type {
		case LSymbol:
			if p.Ns != "" {
				return nil, env.ErrorConditionf(CondTypeError, "fn: parameter is qualified: %v", p)
			}
			if lerr := unique(p); lerr != nil {
				return nil, lerr
			}
		case LVector, LMap:
			arity.simple = false
		default:
			return nil, env.ErrorConditionf(CondTypeError, "unsupported binding pattern: %v", p)
		}
		arity.Params = append(arity.Params, p)
	}
	if len(body) > 1 && body[0].Type == LMap {
		if pre, ok := body[0].MapData().Get(Keyword("pre")); ok {
			if !pre.IsSeq() {
				return nil, env.ErrorConditionf(CondTypeError, "fn: :pre must be a vector of expressions")
			}
			arity.Pre = pre.Items()
			body = body[1:]
		}
	}
	arity.Body = body
	return arity, nil
}

func (env *LEnv) opSet(args []*LVal) *LVal {
	if lerr := env.checkArgs("set!", args, 2, 2); lerr != nil {
		return lerr
	}
	sym := args[0]
	if sym.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "set!: target is not a symbol: %v", GetType(sym))
	}
	if sym.Ns == "" {
		if _, ok := env.lookupLocal(sym.Str); ok {
			return env.Errorf("set!: cannot assign local binding %s", sym.Str)
		}
	}
	v := env.resolveVar(sym)
	if v == nil {
		return env.ErrorConditionf(CondUnresolvedSymbol, "unable to resolve symbol: %s", sym.QualifiedName())
	}
	if !v.Dynamic {
		return env.Errorf("set!: cannot assign non-dynamic var %s", v.QualifiedName())
	}
	val := env.eval(args[1], nil)
	if val.Type == LError {
		return val
	}
	if env.Thread.setDynamic(v.QualifiedName(), val) {
		return val
	}
	ns := env.Runtime.Registry.Get(v.Ns)
	if ns == nil || ns.Sealed() {
		return env.securityViolation("cannot assign %s in sealed namespace %s", v.QualifiedName(), v.Ns)
	}
	ns.SetValue(v, val)
	return val
}

func (env *LEnv) opDefmulti(args []*LVal) *LVal {
	if lerr := env.checkArgs("defmulti", args, 2, 3); lerr != nil {
		return lerr
	}
	sym := env.defName("defmulti", args[0])
	if sym.Type == LError {
		return sym
	}
	expr := args[1]
	if len(args) == 3 {
		if args[1].Type != LString {
			return env.ErrorConditionf(CondTypeError, "defmulti: docstring is not a string: %v", GetType(args[1]))
		}
		sym = withDoc(sym, args[1].Str)
		expr = args[2]
	}
	dispatch := env.eval(expr, nil)
	if dispatch.Type == LError {
		return dispatch
	}
	switch dispatch.Type {
	case LFun, LKeyword, LMultiFn:
	default:
		return env.ErrorConditionf(CondTypeError, "defmulti: dispatch is not a function: %v", GetType(dispatch))
	}
	return env.PutGlobal(sym, MultiFn(env.Thread.Ns.Name, sym.Str, dispatch), 0)
}

func (env *LEnv) opDefmethod(args []*LVal) *LVal {
	if lerr := env.checkArgs("defmethod", args, 3, -1); lerr != nil {
		return lerr
	}
	if args[0].Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "defmethod: name is not a symbol: %v", GetType(args[0]))
	}
	multi := env.Get(args[0])
	if multi.Type == LError {
		return multi
	}
	if multi.Type != LMultiFn {
		return env.ErrorConditionf(CondTypeError, "defmethod: %s is not a multi-function", args[0])
	}
	val := env.eval(args[1], nil)
	if val.Type == LError {
		return val
	}
	fun := env.makeFun(args[0].Str, args[2:])
	if fun.Type == LError {
		return fun
	}
	multi.MultiFnData().AddMethod(val, fun)
	return multi
}

// nsName returns the name denoted by a symbol, keyword or string.
func (env *LEnv) nsName(form string, v *LVal) (string, *LVal) {
	switch v.Type {
	case LSymbol, LKeyword:
		if v.Ns != "" {
			return "", env.ErrorConditionf(CondTypeError, "%s: namespace name is qualified: %v", form, v)
		}
		return v.Str, nil
	case LString:
		return v.Str, nil
	}
	return "", env.ErrorConditionf(CondTypeError, "%s: invalid namespace name: %v", form, GetType(v))
}

func (env *LEnv) opNs(args []*LVal) *LVal {
	if lerr := env.checkArgs("ns", args, 1, 1); lerr != nil {
		return lerr
	}
	name := args[0]
	if name.Type == LList && name.Len() == 2 && name.First().IsSymbol("quote") {
		name, _ = name.Nth(1)
	}
	s, lerr := env.nsName("ns", name)
	if lerr != nil {
		return lerr
	}
	return env.InNamespace(s)
}

func (env *LEnv) opNsRemove(args []*LVal) *LVal {
	if lerr := env.checkArgs("ns-remove", args, 1, 1); lerr != nil {
		return lerr
	}
	v := env.eval(args[0], nil)
	if v.Type == LError {
		return v
	}
	name, lerr := env.nsName("ns-remove", v)
	if lerr != nil {
		return lerr
	}
	reg := env.Runtime.Registry
	if err := reg.Remove(name); err != nil {
		return env.securityViolation("%v", err)
	}
	if env.Thread.Ns.Name == name {
		env.Thread.Ns = reg.ComputeIfAbsent(UserNamespace)
	}
	return Nil()
}

func (env *LEnv) opNsUnmap(args []*LVal) *LVal {
	if lerr := env.checkArgs("ns-unmap", args, 2, 2); lerr != nil {
		return lerr
	}
	vals, lerr := env.evalArgs(args)
	if lerr != nil {
		return lerr
	}
	name, lerr := env.nsName("ns-unmap", vals[0])
	if lerr != nil {
		return lerr
	}
	if vals[1].Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "ns-unmap: var name is not a symbol: %v", GetType(vals[1]))
	}
	ns := env.Runtime.Registry.Get(name)
	if ns == nil {
		return env.Errorf("ns-unmap: unknown namespace: %s", name)
	}
	if ns.Sealed() {
		return env.securityViolation("cannot unmap %s from sealed namespace %s", vals[1].Str, name)
	}
	ns.Unmap(vals[1].Str)
	return Nil()
}

func (env *LEnv) evalArgs(args []*LVal) ([]*LVal, *LVal) {
	vals := make([]*LVal, len(args))
	for i, expr := range args {
		v := env.eval(expr, nil)
		if v.Type == LError {
			return nil, v
		}
		vals[i] = v
	}
	return vals, nil
}

func (env *LEnv) opNamespace(args []*LVal) *LVal {
	if lerr := env.checkArgs("namespace", args, 0, 1); lerr != nil {
		return lerr
	}
	if len(args) == 0 {
		return Symbol(env.Thread.Ns.Name)
	}
	v := env.eval(args[0], nil)
	ns := ""
	switch v.Type {
	case LError:
		return v
	case LSymbol, LKeyword:
		ns = v.Ns
	case LFun:
		ns = v.FunData().Ns
	case LMultiFn:
		ns = v.MultiFnData().Ns
	default:
		return env.ErrorConditionf(CondTypeError, "namespace: value has no namespace: %v", GetType(v))
	}
	if ns == "" {
		return Nil()
	}
	return String(ns)
}

func (env *LEnv) opImport(args []*LVal) *LVal {
	ns := env.Thread.Ns
	if ns.Sealed() {
		return env.securityViolation("cannot import into sealed namespace %s", ns.Name)
	}
	for _, name := range args {
		switch name.Type {
		case LSymbol, LKeyword:
			ns.Import(name.QualifiedName())
		case LString:
			ns.Import(name.Str)
		default:
			return env.ErrorConditionf(CondTypeError, "import: invalid type name: %v", GetType(name))
		}
	}
	return Nil()
}

func (env *LEnv) opImports(args []*LVal) *LVal {
	if lerr := env.checkArgs("imports", args, 0, 1); lerr != nil {
		return lerr
	}
	ns := env.Thread.Ns
	if len(args) == 1 {
		v := env.eval(args[0], nil)
		if v.Type == LError {
			return v
		}
		name, lerr := env.nsName("imports", v)
		if lerr != nil {
			return lerr
		}
		if ns = env.Runtime.Registry.Get(name); ns == nil {
			return env.Errorf("imports: unknown namespace: %s", name)
		}
	}
	return Vector(keywordList(ns.Imports())...)
}

func keywordList(names []string) []*LVal {
	kws := make([]*LVal, len(names))
	for i := range names {
		kws[i] = Keyword(names[i])
	}
	return kws
}

func (env *LEnv) symbolArg(form string, args []*LVal) *LVal {
	if lerr := env.checkArgs(form, args, 1, 1); lerr != nil {
		return lerr
	}
	sym := env.eval(args[0], nil)
	if sym.Type == LError {
		return sym
	}
	if sym.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "%s: argument is not a symbol: %v", form, GetType(sym))
	}
	return sym
}

func (env *LEnv) opResolve(args []*LVal) *LVal {
	sym := env.symbolArg("resolve", args)
	if sym.Type == LError {
		return sym
	}
	v := env.Get(sym)
	if v.Type == LError && v.Str == CondUnresolvedSymbol {
		return Nil()
	}
	return v
}

func (env *LEnv) opVarGet(args []*LVal) *LVal {
	sym := env.symbolArg("var-get", args)
	if sym.Type == LError {
		return sym
	}
	v := env.resolveVar(sym)
	if v == nil {
		return Nil()
	}
	return env.varValue(v)
}

func (env *LEnv) opBoundP(args []*LVal) *LVal {
	sym := env.symbolArg("bound?", args)
	if sym.Type == LError {
		return sym
	}
	if sym.Ns == "" {
		if _, ok := env.lookupLocal(sym.Str); ok {
			return Bool(true)
		}
	}
	return Bool(env.resolveVar(sym) != nil)
}

func (env *LEnv) opInspect(args []*LVal) *LVal {
	sym := env.symbolArg("inspect", args)
	if sym.Type == LError {
		return sym
	}
	v := env.resolveVar(sym)
	if v == nil {
		return Nil()
	}
	val := env.varValue(v)
	kvs := []*LVal{
		Keyword("name"), String(v.QualifiedName()),
		Keyword("ns"), String(v.Ns),
		Keyword("type"), GetType(val),
		Keyword("dynamic"), Bool(v.Dynamic),
		Keyword("redefinable"), Bool(v.Redefinable),
		Keyword("private"), Bool(v.Private),
	}
	if doc := varDoc(v); doc != "" {
		kvs = append(kvs, Keyword("doc"), String(doc))
	}
	if val.Type == LFun {
		kvs = append(kvs, Keyword("macro"), Bool(val.IsMacro()))
		kvs = append(kvs, Keyword("arglists"), List(arglists(val.FunData())...))
	}
	return MapOf(SortedKind, kvs...)
}

func varDoc(v *Var) string {
	if v.Meta != nil && v.Meta.Type == LMap {
		if doc, ok := v.Meta.MapData().Get(Keyword("doc")); ok && doc.Type == LString {
			return doc.Str
		}
	}
	if v.Value.Type == LFun {
		return v.Value.FunData().Doc
	}
	return ""
}

func arglists(fd *LFunData) []*LVal {
	var lists []*LVal
	if fd.Builtin != nil {
		return lists
	}
	for _, a := range fd.Arities {
		lists = append(lists, Vector(a.Params...))
	}
	if a := fd.Variadic; a != nil {
		params := append(append([]*LVal{}, a.Params...), Symbol("&"), a.Rest)
		lists = append(lists, Vector(params...))
	}
	return lists
}

func (env *LEnv) opMacroexpand(args []*LVal, all bool) *LVal {
	form := "macroexpand"
	if all {
		form = "macroexpand-all"
	}
	if lerr := env.checkArgs(form, args, 1, 1); lerr != nil {
		return lerr
	}
	v := env.eval(args[0], nil)
	if v.Type == LError {
		return v
	}
	if all {
		return env.MacroExpandAll(v)
	}
	return env.MacroExpand(v)
}

func (env *LEnv) opDoc(args []*LVal) *LVal {
	if lerr := env.checkArgs("doc", args, 1, 1); lerr != nil {
		return lerr
	}
	name := args[0]
	var usage []string
	var doc string
	switch {
	case name.Type == LString:
		doc = name.Str
	case name.Type != LSymbol:
		return env.ErrorConditionf(CondTypeError, "doc: argument is not a symbol: %v", GetType(name))
	default:
		if f, ok := specialFormDoc(name.QualifiedName()); ok {
			usage = []string{f.usage}
			doc = f.doc
			break
		}
		v := env.resolveVar(name)
		if v == nil {
			return env.ErrorConditionf(CondUnresolvedSymbol, "unable to resolve symbol: %s", name.QualifiedName())
		}
		name = Symbol(v.QualifiedName())
		doc = varDoc(v)
		if val := env.varValue(v); val.Type == LFun {
			for _, l := range arglists(val.FunData()) {
				usage = append(usage, List(append([]*LVal{Symbol(v.Name)}, l.Items()...)...).String())
			}
		}
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("-", 72))
	b.WriteString("\n")
	b.WriteString(name.Display())
	b.WriteString("\n")
	for _, u := range usage {
		b.WriteString(u)
		b.WriteString("\n")
	}
	if doc != "" {
		b.WriteString("\n")
		b.WriteString(indent.String(wordwrap.String(normalizeDoc(doc), 70), 2))
		b.WriteString("\n")
	}
	if _, err := fmt.Fprint(env.Runtime.Stdout, b.String()); err != nil {
		return env.Error(err)
	}
	return Nil()
}

// normalizeDoc joins the lines of an indented docstring so it may be
// rewrapped.  Blank lines separate paragraphs.
func normalizeDoc(doc string) string {
	var paras []string
	for _, p := range strings.Split(doc, "\n\n") {
		paras = append(paras, strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(paras, "\n\n")
}

func (env *LEnv) opEval(args []*LVal) *LVal {
	if lerr := env.checkArgs("eval", args, 1, 1); lerr != nil {
		return lerr
	}
	form := env.eval(args[0], nil)
	if form.Type == LError {
		return form
	}
	th := env.Thread
	saved := th.Ns
	defer func() { th.Ns = saved }()
	return env.root().Eval(form)
}

func (env *LEnv) opBinding(args []*LVal) *LVal {
	if lerr := env.checkArgs("binding", args, 1, -1); lerr != nil {
		return lerr
	}
	if args[0].Type != LVector {
		return env.ErrorConditionf(CondTypeError, "binding: bindings must be a vector: %v", GetType(args[0]))
	}
	cells := args[0].Items()
	if len(cells)%2 != 0 {
		return env.ErrorConditionf(CondArityError, "binding: odd number of forms in binding vector")
	}
	names := make([]string, 0, len(cells)/2)
	vals := make([]*LVal, 0, len(cells)/2)
	for i := 0; i < len(cells); i += 2 {
		sym := cells[i]
		if sym.Type != LSymbol {
			return env.ErrorConditionf(CondTypeError, "binding: name is not a symbol: %v", GetType(sym))
		}
		v := env.resolveVar(sym)
		if v == nil {
			return env.ErrorConditionf(CondUnresolvedSymbol, "unable to resolve symbol: %s", sym.QualifiedName())
		}
		if !v.Dynamic {
			return env.Errorf("binding: cannot rebind non-dynamic var %s", v.QualifiedName())
		}
		val := env.eval(cells[i+1], nil)
		if val.Type == LError {
			return val
		}
		names = append(names, v.QualifiedName())
		vals = append(vals, val)
	}
	th := env.Thread
	for i := range names {
		th.PushDynamic(names[i], vals[i])
	}
	defer func() {
		for i := len(names) - 1; i >= 0; i-- {
			th.PopDynamic(names[i])
		}
	}()
	return env.evalBody(args[1:], nil)
}

func (env *LEnv) opLocking(args []*LVal) *LVal {
	if lerr := env.checkArgs("locking", args, 1, -1); lerr != nil {
		return lerr
	}
	x := env.eval(args[0], nil)
	if x.Type == LError {
		return x
	}
	mu := env.Runtime.lock(x)
	mu.Lock()
	defer mu.Unlock()
	return env.evalBody(args[1:], nil)
}

func (env *LEnv) opDorun(args []*LVal, bench bool) *LVal {
	form := "dorun"
	if bench {
		form = "dobench"
	}
	if lerr := env.checkArgs(form, args, 2, 2); lerr != nil {
		return lerr
	}
	n := env.eval(args[0], nil)
	if n.Type == LError {
		return n
	}
	if n.Type != LLong {
		return env.ErrorConditionf(CondTypeError, "%s: count is not a long: %v", form, GetType(n))
	}
	r := Nil()
	var times []*LVal
	for i := int64(0); i < n.Int; i++ {
		start := time.Now()
		r = env.eval(args[1], nil)
		if r.Type == LError {
			return r
		}
		if bench {
			times = append(times, Long(time.Since(start).Nanoseconds()))
		}
	}
	if bench {
		return List(times...)
	}
	return r
}
