// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"strings"
)

func builtin(name string, min, max int, fn LBuiltin, doc string) *LBuiltinDef {
	return &LBuiltinDef{Name: name, MinArgs: min, MaxArgs: max, Fun: fn, Doc: doc, Redefinable: true}
}

func pureBuiltin(name string, min, max int, fn LBuiltin, doc string) *LBuiltinDef {
	def := builtin(name, min, max, fn, doc)
	def.Pure = true
	return def
}

// protectedBuiltin returns a builtin which no namespace may shadow.
func protectedBuiltin(name string, min, max int, fn LBuiltin, doc string) *LBuiltinDef {
	def := builtin(name, min, max, fn, doc)
	def.Redefinable = false
	return def
}

// DefaultBuiltins returns the builtin functions installed in the core
// namespace of every environment.
func DefaultBuiltins() BuiltinTable {
	var table BuiltinTable
	table = append(table, langBuiltins()...)
	table = append(table, mathBuiltins()...)
	table = append(table, collBuiltins()...)
	return table
}

func langBuiltins() BuiltinTable {
	return BuiltinTable{
		protectedBuiltin("load-module", 1, 1, builtinLoadModule,
			"Loads the named module unless it has already been loaded."),
		protectedBuiltin("load-string", 1, 2, builtinLoadString,
			"Evaluates every form of a source string in the current namespace."),
		protectedBuiltin("derive-condition", 2, 2, builtinDeriveCondition,
			"Registers a new condition as a descendant of a parent condition."),
		builtin("read-string", 1, 1, builtinReadString,
			"Reads the first form of a string and returns it unevaluated."),
		builtin("gensym", 0, 1, builtinGensym,
			"Returns a unique symbol with an optional name prefix."),
		pureBuiltin("identity", 1, 1, builtinIdentity,
			"Returns its argument."),
		pureBuiltin("type", 1, 1, builtinType,
			"Returns a keyword naming the type of a value."),
		pureBuiltin("nil?", 1, 1, typePredicate(LNil), "Returns true if x is nil."),
		pureBuiltin("some?", 1, 1, builtinIsSome, "Returns true if x is not nil."),
		pureBuiltin("true?", 1, 1, builtinIsTrue, "Returns true if x is the value true."),
		pureBuiltin("false?", 1, 1, builtinIsFalse, "Returns true if x is the value false."),
		pureBuiltin("boolean?", 1, 1, typePredicate(LBool), "Returns true if x is a boolean."),
		pureBuiltin("long?", 1, 1, typePredicate(LLong), "Returns true if x is a long."),
		pureBuiltin("double?", 1, 1, typePredicate(LDouble), "Returns true if x is a double."),
		pureBuiltin("decimal?", 1, 1, typePredicate(LDecimal), "Returns true if x is a decimal."),
		pureBuiltin("bigint?", 1, 1, typePredicate(LBigInt), "Returns true if x is a big integer."),
		pureBuiltin("string?", 1, 1, typePredicate(LString), "Returns true if x is a string."),
		pureBuiltin("char?", 1, 1, typePredicate(LChar), "Returns true if x is a character."),
		pureBuiltin("keyword?", 1, 1, typePredicate(LKeyword), "Returns true if x is a keyword."),
		pureBuiltin("symbol?", 1, 1, typePredicate(LSymbol), "Returns true if x is a symbol."),
		pureBuiltin("list?", 1, 1, typePredicate(LList), "Returns true if x is a list."),
		pureBuiltin("vector?", 1, 1, typePredicate(LVector), "Returns true if x is a vector."),
		pureBuiltin("map?", 1, 1, typePredicate(LMap), "Returns true if x is a map."),
		pureBuiltin("set?", 1, 1, typePredicate(LSet), "Returns true if x is a set."),
		pureBuiltin("atom?", 1, 1, typePredicate(LAtom), "Returns true if x is an atom."),
		pureBuiltin("exception?", 1, 1, typePredicate(LException), "Returns true if x is an exception."),
		pureBuiltin("multi-fn?", 1, 1, typePredicate(LMultiFn), "Returns true if x is a multi-function."),
		pureBuiltin("custom-type?", 1, 1, typePredicate(LTaggedVal), "Returns true if x is a value of a custom type."),
		pureBuiltin("fn?", 1, 1, builtinIsFn, "Returns true if x is a function which is not a macro."),
		pureBuiltin("macro?", 1, 1, builtinIsMacro, "Returns true if x is a macro."),
		pureBuiltin("=", 1, -1, builtinEqual,
			"Returns true if all arguments are equal.  Numbers of different categories are never equal."),
		pureBuiltin("not=", 1, -1, builtinNotEqual, "Returns true if any two arguments differ."),
		pureBuiltin("identical?", 2, 2, builtinIdentical, "Returns true if both arguments are the same object."),
		pureBuiltin("not", 1, 1, builtinNot, "Returns true if x is nil or false."),
		pureBuiltin("compare", 2, 2, builtinCompare,
			"Returns a negative number, zero or a positive number as x is less than, equal to or greater than y."),
		pureBuiltin("hash", 1, 1, builtinHash, "Returns the hash code of x."),
		pureBuiltin("str", 0, -1, builtinStr,
			"Returns the concatenated display strings of the arguments.  nil produces the empty string."),
		pureBuiltin("pr-str", 0, -1, builtinPrStr,
			"Returns the readable representations of the arguments separated by spaces."),
		builtin("print", 0, -1, builtinPrint, "Prints the display strings of the arguments."),
		builtin("println", 0, -1, builtinPrintln, "Prints the display strings of the arguments and a newline."),
		builtin("prn", 0, -1, builtinPrn, "Prints the readable representations of the arguments and a newline."),
		pureBuiltin("name", 1, 1, builtinName, "Returns the unqualified name of a symbol, keyword or string."),
		pureBuiltin("keyword", 1, 2, builtinKeyword, "Returns a keyword with the given namespace and name."),
		pureBuiltin("symbol", 1, 2, builtinSymbol, "Returns a symbol with the given namespace and name."),
		pureBuiltin("meta", 1, 1, builtinMeta,
			"Returns the metadata of x including its source location, or nil."),
		pureBuiltin("with-meta", 2, 2, builtinWithMeta, "Returns a copy of x with metadata m."),
		builtin("vary-meta", 2, -1, builtinVaryMeta,
			"Returns a copy of x with metadata (apply f (meta x) args)."),
		builtin("atom", 1, 1, builtinAtom, "Returns an atom holding x."),
		builtin("deref", 1, 1, builtinDeref, "Returns the value held by an atom."),
		builtin("reset!", 2, 2, builtinReset, "Sets the value of an atom and returns it."),
		builtin("swap!", 2, -1, builtinSwap,
			"Atomically sets the value of an atom to (apply f current args) and returns the new value."),
		builtin("compare-and-set!", 3, 3, builtinCompareAndSet,
			"Sets the value of an atom to new if its current value equals old.  Returns true if the value was set."),
		builtin("ex", 1, 3, builtinEx, "Returns an exception with a condition, a message and optional data."),
		builtin("throw", 1, 1, builtinThrow,
			"Raises an exception.  Other values are raised as a value-exception carrying the value."),
		pureBuiltin("ex-message", 1, 1, builtinExMessage, "Returns the message of an exception."),
		pureBuiltin("ex-data", 1, 1, builtinExData, "Returns the data of an exception."),
		pureBuiltin("ex-condition", 1, 1, builtinExCondition, "Returns the condition of an exception."),
		builtin("isa-condition?", 2, 2, builtinIsaCondition,
			"Returns true if a condition is the same as or a descendant of another."),
		builtin("apply", 2, -1, builtinApply,
			"Calls f with the arguments preceding the final sequence followed by the elements of the sequence."),
	}
}

func typePredicate(t LType) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		return Bool(args[0].Type == t)
	}
}

func builtinLoadModule(env *LEnv, args []*LVal) *LVal {
	name, lerr := env.nsName("load-module", args[0])
	if lerr != nil {
		return lerr
	}
	return env.LoadModule(name)
}

func builtinLoadString(env *LEnv, args []*LVal) *LVal {
	if args[0].Type != LString {
		return env.ErrorConditionf(CondTypeError, "load-string: source is not a string: %v", GetType(args[0]))
	}
	name := "load-string"
	if len(args) > 1 {
		if args[1].Type != LString {
			return env.ErrorConditionf(CondTypeError, "load-string: name is not a string: %v", GetType(args[1]))
		}
		name = args[1].Str
	}
	return env.EvalString(args[0].Str, name)
}

func builtinDeriveCondition(env *LEnv, args []*LVal) *LVal {
	for _, c := range args {
		if c.Type != LKeyword {
			return env.ErrorConditionf(CondTypeError, "derive-condition: condition is not a keyword: %v", GetType(c))
		}
	}
	if err := env.Runtime.Conditions.Derive(args[0].QualifiedName(), args[1].QualifiedName()); err != nil {
		return env.Error(err)
	}
	return args[0]
}

func builtinReadString(env *LEnv, args []*LVal) *LVal {
	if args[0].Type != LString {
		return env.ErrorConditionf(CondTypeError, "read-string: argument is not a string: %v", GetType(args[0]))
	}
	forms, lerr := env.read("read-string", args[0].Str)
	if lerr != nil {
		return lerr
	}
	if len(forms) == 0 {
		return Nil()
	}
	return forms[0]
}

func builtinGensym(env *LEnv, args []*LVal) *LVal {
	if len(args) == 0 {
		return env.GenSym()
	}
	prefix, ok := GoString(args[0])
	if !ok {
		if args[0].Type != LSymbol {
			return env.ErrorConditionf(CondTypeError, "gensym: prefix is not a string: %v", GetType(args[0]))
		}
		prefix = args[0].Str
	}
	return Symbol(prefix + env.Runtime.GenSym())
}

func builtinIdentity(env *LEnv, args []*LVal) *LVal {
	return args[0]
}

func builtinType(env *LEnv, args []*LVal) *LVal {
	return GetType(args[0])
}

func builtinIsSome(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type != LNil)
}

func builtinIsTrue(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type == LBool && args[0].Int != 0)
}

func builtinIsFalse(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type == LBool && args[0].Int == 0)
}

func builtinIsFn(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].Type == LFun && !args[0].IsMacro())
}

func builtinIsMacro(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].IsMacro())
}

func builtinEqual(env *LEnv, args []*LVal) *LVal {
	for i := 1; i < len(args); i++ {
		if !args[i-1].Equal(args[i]) {
			return Bool(false)
		}
	}
	return Bool(true)
}

func builtinNotEqual(env *LEnv, args []*LVal) *LVal {
	return Bool(!True(builtinEqual(env, args)))
}

func builtinIdentical(env *LEnv, args []*LVal) *LVal {
	a, b := args[0], args[1]
	switch a.Type {
	case LNil, LBool, LKeyword:
		return Bool(a.Equal(b))
	}
	return Bool(a == b)
}

func builtinNot(env *LEnv, args []*LVal) *LVal {
	return Bool(Not(args[0]))
}

func builtinCompare(env *LEnv, args []*LVal) *LVal {
	return Int(CompareValues(args[0], args[1]))
}

func builtinHash(env *LEnv, args []*LVal) *LVal {
	return Long(int64(args[0].Hash()))
}

func builtinStr(env *LEnv, args []*LVal) *LVal {
	var b strings.Builder
	for _, x := range args {
		if x.Type == LNil {
			continue
		}
		b.WriteString(x.Display())
	}
	return String(b.String())
}

func readableStrings(args []*LVal) string {
	strs := make([]string, len(args))
	for i := range args {
		strs[i] = args[i].String()
	}
	return strings.Join(strs, " ")
}

func displayStrings(args []*LVal) string {
	strs := make([]string, len(args))
	for i := range args {
		strs[i] = args[i].Display()
	}
	return strings.Join(strs, " ")
}

func builtinPrStr(env *LEnv, args []*LVal) *LVal {
	return String(readableStrings(args))
}

func (env *LEnv) write(s string) *LVal {
	if _, err := fmt.Fprint(env.Runtime.Stdout, s); err != nil {
		return env.Error(err)
	}
	return Nil()
}

func builtinPrint(env *LEnv, args []*LVal) *LVal {
	return env.write(displayStrings(args))
}

func builtinPrintln(env *LEnv, args []*LVal) *LVal {
	return env.write(displayStrings(args) + "\n")
}

func builtinPrn(env *LEnv, args []*LVal) *LVal {
	return env.write(readableStrings(args) + "\n")
}

func builtinName(env *LEnv, args []*LVal) *LVal {
	switch args[0].Type {
	case LSymbol, LKeyword, LString:
		return String(args[0].Str)
	}
	return env.ErrorConditionf(CondTypeError, "name: value has no name: %v", GetType(args[0]))
}

func nameArgs(env *LEnv, form string, args []*LVal) (string, string, *LVal) {
	strs := make([]string, len(args))
	for i, x := range args {
		switch x.Type {
		case LString, LSymbol, LKeyword:
			strs[i] = x.Str
			if len(args) == 1 {
				strs[i] = x.QualifiedName()
			}
		case LNil:
			if i == 0 && len(args) == 2 {
				continue
			}
			fallthrough
		default:
			return "", "", env.ErrorConditionf(CondTypeError, "%s: argument is not a string: %v", form, GetType(x))
		}
	}
	if len(args) == 1 {
		ns, name := splitQualified(strs[0])
		return ns, name, nil
	}
	return strs[0], strs[1], nil
}

func builtinKeyword(env *LEnv, args []*LVal) *LVal {
	if len(args) == 1 && args[0].Type == LKeyword {
		return args[0]
	}
	ns, name, lerr := nameArgs(env, "keyword", args)
	if lerr != nil {
		return lerr
	}
	return QualifiedKeyword(ns, name)
}

func builtinSymbol(env *LEnv, args []*LVal) *LVal {
	if len(args) == 1 && args[0].Type == LSymbol {
		return args[0]
	}
	ns, name, lerr := nameArgs(env, "symbol", args)
	if lerr != nil {
		return lerr
	}
	return QualifiedSymbol(ns, name)
}

func builtinMeta(env *LEnv, args []*LVal) *LVal {
	v := args[0]
	var m *MapData
	if v.Meta != nil && v.Meta.Type == LMap {
		m = v.Meta.MapData()
	}
	if loc := v.Source; loc != nil && loc.Pos >= 0 {
		if m == nil {
			m = NewMapData(HashKind)
		}
		m = m.Assoc(Keyword("file"), String(loc.File))
		m = m.Assoc(Keyword("line"), Int(loc.Line))
		m = m.Assoc(Keyword("column"), Int(loc.Col))
	}
	if m == nil {
		return Nil()
	}
	return mapFromData(m)
}

func builtinWithMeta(env *LEnv, args []*LVal) *LVal {
	switch args[1].Type {
	case LNil:
		return args[0].WithMeta(nil)
	case LMap:
		return args[0].WithMeta(args[1])
	}
	return env.ErrorConditionf(CondTypeError, "with-meta: metadata is not a map: %v", GetType(args[1]))
}

func builtinVaryMeta(env *LEnv, args []*LVal) *LVal {
	meta := args[0].Meta
	if meta == nil {
		meta = Nil()
	}
	fargs := append([]*LVal{meta}, args[2:]...)
	m := env.FunCall(args[1], fargs)
	if m.Type == LError {
		return m
	}
	return builtinWithMeta(env, []*LVal{args[0], m})
}

func builtinAtom(env *LEnv, args []*LVal) *LVal {
	return Atom(args[0])
}

func atomArg(env *LEnv, form string, v *LVal) (*AtomData, *LVal) {
	if v.Type != LAtom {
		return nil, env.ErrorConditionf(CondTypeError, "%s: argument is not an atom: %v", form, GetType(v))
	}
	return v.AtomData(), nil
}

func builtinDeref(env *LEnv, args []*LVal) *LVal {
	a, lerr := atomArg(env, "deref", args[0])
	if lerr != nil {
		return lerr
	}
	return a.Deref()
}

func builtinReset(env *LEnv, args []*LVal) *LVal {
	a, lerr := atomArg(env, "reset!", args[0])
	if lerr != nil {
		return lerr
	}
	a.Reset(args[1])
	return args[1]
}

func builtinSwap(env *LEnv, args []*LVal) *LVal {
	a, lerr := atomArg(env, "swap!", args[0])
	if lerr != nil {
		return lerr
	}
	fargs := make([]*LVal, len(args)-1)
	copy(fargs[1:], args[2:])
	for {
		old := a.Deref()
		fargs[0] = old
		v := env.FunCall(args[1], fargs)
		if v.Type == LError {
			return v
		}
		if a.CompareAndSet(old, v) {
			return v
		}
	}
}

func builtinCompareAndSet(env *LEnv, args []*LVal) *LVal {
	a, lerr := atomArg(env, "compare-and-set!", args[0])
	if lerr != nil {
		return lerr
	}
	for {
		cur := a.Deref()
		if !cur.Equal(args[1]) {
			return Bool(false)
		}
		if a.CompareAndSet(cur, args[2]) {
			return Bool(true)
		}
	}
}

func builtinEx(env *LEnv, args []*LVal) *LVal {
	if args[0].Type != LKeyword {
		return env.ErrorConditionf(CondTypeError, "ex: condition is not a keyword: %v", GetType(args[0]))
	}
	msg := ""
	if len(args) > 1 {
		msg = args[1].Display()
	}
	data := Nil()
	if len(args) > 2 {
		data = args[2]
	}
	return Exception(args[0].QualifiedName(), msg, data)
}

func builtinThrow(env *LEnv, args []*LVal) *LVal {
	x := args[0]
	if x.Type == LException {
		lerr := raise(x)
		env.ErrorAssociate(lerr)
		return lerr
	}
	lerr := env.ErrorConditionf(CondValueException, "%v", x)
	lerr.Cells = append(lerr.Cells, x)
	return lerr
}

func exceptionArg(env *LEnv, form string, v *LVal) *LVal {
	if v.Type != LException {
		return env.ErrorConditionf(CondTypeError, "%s: argument is not an exception: %v", form, GetType(v))
	}
	return nil
}

func builtinExMessage(env *LEnv, args []*LVal) *LVal {
	if lerr := exceptionArg(env, "ex-message", args[0]); lerr != nil {
		return lerr
	}
	return String(args[0].ErrorMessage())
}

func builtinExData(env *LEnv, args []*LVal) *LVal {
	if lerr := exceptionArg(env, "ex-data", args[0]); lerr != nil {
		return lerr
	}
	return args[0].ErrorData()
}

func builtinExCondition(env *LEnv, args []*LVal) *LVal {
	if lerr := exceptionArg(env, "ex-condition", args[0]); lerr != nil {
		return lerr
	}
	return Keyword(args[0].Str)
}

func builtinIsaCondition(env *LEnv, args []*LVal) *LVal {
	for _, c := range args {
		if c.Type != LKeyword {
			return env.ErrorConditionf(CondTypeError, "isa-condition?: condition is not a keyword: %v", GetType(c))
		}
	}
	return Bool(env.Runtime.Conditions.IsA(args[0].QualifiedName(), args[1].QualifiedName()))
}

func builtinApply(env *LEnv, args []*LVal) *LVal {
	last := args[len(args)-1]
	switch last.Type {
	case LNil, LList, LVector, LSet, LMap:
	default:
		return env.ErrorConditionf(CondTypeError, "apply: last argument is not a sequence: %v", GetType(last))
	}
	fargs := append(append([]*LVal{}, args[1:len(args)-1]...), last.Items()...)
	return env.FunCall(args[0], fargs)
}
