// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TypeKind distinguishes the kinds of custom types.
type TypeKind uint8

// TypeKind values.
const (
	// RecordType instances hold a map of named fields.
	RecordType TypeKind = iota
	// WrapperType instances hold a single value of a base type.
	WrapperType
	// ChoiceType instances hold one of an enumerated set of values.
	ChoiceType
)

// FieldDef is a field of a record type.
type FieldDef struct {
	Name string
	// Type is the qualified name of the field's type or "any".
	Type string
}

// TypeDef describes a custom type.  Instances are LTaggedVal values whose
// Str field holds the qualified type name.
type TypeDef struct {
	Name      string
	Kind      TypeKind
	Fields    []FieldDef
	Base      string
	Choices   []*LVal
	Validator *LVal
}

// TypeRegistry holds the custom types of a runtime.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]*TypeDef
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]*TypeDef)}
}

// Get returns the type with the given qualified name.
func (r *TypeRegistry) Get(name string) (*TypeDef, bool) {
	r.mu.RLock()
	def, ok := r.types[name]
	r.mu.RUnlock()
	return def, ok
}

// Define registers def, replacing any type with the same name.
func (r *TypeRegistry) Define(def *TypeDef) {
	r.mu.Lock()
	r.types[def.Name] = def
	r.mu.Unlock()
}

// Names returns the sorted names of all custom types.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// builtinTypeNames are the type keywords which are not custom types.
var builtinTypeNames = func() map[string]bool {
	names := map[string]bool{"any": true, "number": true, "collection": true, "sequence": true}
	for _, name := range lvalTypeStrings[LNil:] {
		names[name] = true
	}
	return names
}()

// resolveType returns the qualified name a type keyword refers to.  Builtin
// type names are never qualified.  Unqualified custom names resolve in the
// current namespace and then in core.
func (env *LEnv) resolveType(kw *LVal) string {
	if kw.Ns != "" {
		return kw.QualifiedName()
	}
	if builtinTypeNames[kw.Str] {
		return kw.Str
	}
	types := env.Runtime.Types
	for _, ns := range []string{env.Thread.Ns.Name, CoreNamespace} {
		name := ns + "/" + kw.Str
		if _, ok := types.Get(name); ok {
			return name
		}
	}
	return env.Thread.Ns.Name + "/" + kw.Str
}

// instanceOf reports whether v is a value of the named type.
func (env *LEnv) instanceOf(v *LVal, typ string) bool {
	switch typ {
	case "any":
		return true
	case "number":
		return v.IsNumeric()
	case "collection":
		return v.IsColl()
	case "sequence":
		return v.IsSeq()
	}
	return GetType(v).QualifiedName() == typ
}

// newTypeName returns the qualified name of a type defined in the current
// namespace.
func (env *LEnv) newTypeName(form string, kw *LVal) (string, *LVal) {
	if kw.Type != LKeyword {
		return "", env.ErrorConditionf(CondTypeError, "%s: type name is not a keyword: %v", form, GetType(kw))
	}
	ns := env.Thread.Ns
	if kw.Ns != "" && kw.Ns != ns.Name {
		return "", env.securityViolation("%s: cannot define type %v outside namespace %s", form, kw, ns.Name)
	}
	if builtinTypeNames[kw.Str] {
		return "", env.ErrorConditionf(CondTypeError, "%s: %s is a builtin type", form, kw.Str)
	}
	if ns.Sealed() {
		return "", env.securityViolation("%s: namespace %s is sealed", form, ns.Name)
	}
	return ns.Name + "/" + kw.Str, nil
}

func (env *LEnv) typeValidator(form string, args []*LVal) *LVal {
	if len(args) == 0 {
		return nil
	}
	fn := env.eval(args[0], nil)
	if fn.Type == LError {
		return fn
	}
	if fn.Type != LFun {
		return env.ErrorConditionf(CondTypeError, "%s: validator is not a function: %v", form, GetType(fn))
	}
	return fn
}

func (env *LEnv) opDeftype(args []*LVal) *LVal {
	if lerr := env.checkArgs("deftype", args, 2, 3); lerr != nil {
		return lerr
	}
	name, lerr := env.newTypeName("deftype", args[0])
	if lerr != nil {
		return lerr
	}
	if args[1].Type != LVector {
		return env.ErrorConditionf(CondTypeError, "deftype: fields must be a vector: %v", GetType(args[1]))
	}
	cells := args[1].Items()
	if len(cells)%2 != 0 {
		return env.ErrorConditionf(CondArityError, "deftype: field without a type")
	}
	def := &TypeDef{Name: name, Kind: RecordType}
	for i := 0; i < len(cells); i += 2 {
		field, typ := cells[i], cells[i+1]
		if field.Type != LSymbol && field.Type != LKeyword {
			return env.ErrorConditionf(CondTypeError, "deftype: field name is not a symbol: %v", field)
		}
		if typ.Type != LKeyword {
			return env.ErrorConditionf(CondTypeError, "deftype: field type is not a keyword: %v", typ)
		}
		def.Fields = append(def.Fields, FieldDef{Name: field.Str, Type: env.resolveType(typ)})
	}
	def.Validator = env.typeValidator("deftype", args[2:])
	if def.Validator != nil && def.Validator.Type == LError {
		return def.Validator
	}
	return env.defineType(def)
}

func (env *LEnv) opDeftypeOf(args []*LVal) *LVal {
	if lerr := env.checkArgs("deftype-of", args, 2, 3); lerr != nil {
		return lerr
	}
	name, lerr := env.newTypeName("deftype-of", args[0])
	if lerr != nil {
		return lerr
	}
	if args[1].Type != LKeyword {
		return env.ErrorConditionf(CondTypeError, "deftype-of: base type is not a keyword: %v", GetType(args[1]))
	}
	def := &TypeDef{Name: name, Kind: WrapperType, Base: env.resolveType(args[1])}
	def.Validator = env.typeValidator("deftype-of", args[2:])
	if def.Validator != nil && def.Validator.Type == LError {
		return def.Validator
	}
	return env.defineType(def)
}

func (env *LEnv) opDeftypeOr(args []*LVal) *LVal {
	if lerr := env.checkArgs("deftype-or", args, 2, -1); lerr != nil {
		return lerr
	}
	name, lerr := env.newTypeName("deftype-or", args[0])
	if lerr != nil {
		return lerr
	}
	choices, lerr := env.evalArgs(args[1:])
	if lerr != nil {
		return lerr
	}
	return env.defineType(&TypeDef{Name: name, Kind: ChoiceType, Choices: choices})
}

func (env *LEnv) opDeftypeP(args []*LVal) *LVal {
	if lerr := env.checkArgs("deftype?", args, 1, 1); lerr != nil {
		return lerr
	}
	kw := env.eval(args[0], nil)
	if kw.Type == LError {
		return kw
	}
	if kw.Type != LKeyword {
		return env.ErrorConditionf(CondTypeError, "deftype?: type name is not a keyword: %v", GetType(kw))
	}
	_, ok := env.Runtime.Types.Get(env.resolveType(kw))
	return Bool(ok)
}

func (env *LEnv) opNew(args []*LVal) *LVal {
	if lerr := env.checkArgs(".:", args, 1, -1); lerr != nil {
		return lerr
	}
	vals, lerr := env.evalArgs(args)
	if lerr != nil {
		return lerr
	}
	if vals[0].Type != LKeyword {
		return env.ErrorConditionf(CondTypeError, ".: type name is not a keyword: %v", GetType(vals[0]))
	}
	def, ok := env.Runtime.Types.Get(env.resolveType(vals[0]))
	if !ok {
		return env.ErrorConditionf(CondTypeError, ".: unknown type: %v", vals[0])
	}
	return env.construct(def, vals[1:])
}

// defineType registers def and binds its constructor and predicate in the
// current namespace.
func (env *LEnv) defineType(def *TypeDef) *LVal {
	env.Runtime.Types.Define(def)
	short := def.Name[strings.LastIndexByte(def.Name, '/')+1:]
	nargs := 1
	if def.Kind == RecordType {
		nargs = len(def.Fields)
	}
	ctor := &LBuiltinDef{
		Name:    short + ".",
		MinArgs: nargs,
		MaxArgs: nargs,
		Doc:     fmt.Sprintf("Returns a new value of type %s.", def.Name),
		Fun: func(env *LEnv, args []*LVal) *LVal {
			return env.construct(def, args)
		},
	}
	pred := &LBuiltinDef{
		Name:    short + "?",
		MinArgs: 1,
		MaxArgs: 1,
		Doc:     fmt.Sprintf("Returns true if the argument is a value of type %s.", def.Name),
		Fun: func(env *LEnv, args []*LVal) *LVal {
			return Bool(args[0].Type == LTaggedVal && args[0].Str == def.Name)
		},
	}
	ns := env.Thread.Ns.Name
	for _, b := range []*LBuiltinDef{ctor, pred} {
		if lerr := env.PutGlobal(Symbol(b.Name), b.Value(ns), 0); lerr.Type == LError {
			return lerr
		}
	}
	return Keyword(def.Name)
}

// construct returns a new instance of def built from args.
func (env *LEnv) construct(def *TypeDef, args []*LVal) *LVal {
	var data *LVal
	switch def.Kind {
	case RecordType:
		if len(args) != len(def.Fields) {
			return env.ErrorConditionf(CondArityError, "%s: expected %d fields but got %d", def.Name, len(def.Fields), len(args))
		}
		kvs := make([]*LVal, 0, 2*len(args))
		for i, f := range def.Fields {
			if !env.instanceOf(args[i], f.Type) {
				return env.ErrorConditionf(CondTypeError, "%s: field %s must be of type %s but got %v", def.Name, f.Name, f.Type, GetType(args[i]))
			}
			kvs = append(kvs, Keyword(f.Name), args[i])
		}
		data = MapOf(SortedKind, kvs...)
	case WrapperType:
		if len(args) != 1 {
			return env.ErrorConditionf(CondArityError, "%s: expected one value but got %d", def.Name, len(args))
		}
		if !env.instanceOf(args[0], def.Base) {
			return env.ErrorConditionf(CondTypeError, "%s: value must be of type %s but got %v", def.Name, def.Base, GetType(args[0]))
		}
		data = args[0]
	case ChoiceType:
		if len(args) != 1 {
			return env.ErrorConditionf(CondArityError, "%s: expected one value but got %d", def.Name, len(args))
		}
		if !env.isChoice(def, args[0]) {
			return env.ErrorConditionf(CondTypeError, "%s: value is not one of the type's choices: %v", def.Name, args[0])
		}
		data = args[0]
	}
	v := TaggedValue(def.Name, data)
	if def.Validator != nil {
		ok := env.FunCall(def.Validator, []*LVal{data})
		if ok.Type == LError {
			return ok
		}
		if !True(ok) {
			return env.ErrorConditionf(CondAssertionFailure, "%s: invalid value: %v", def.Name, data)
		}
	}
	return v
}

// isChoice reports whether v is one of def's choices.  A choice which is a
// type keyword admits every value of that type.
func (env *LEnv) isChoice(def *TypeDef, v *LVal) bool {
	for _, c := range def.Choices {
		if c.Equal(v) {
			return true
		}
		if c.Type == LKeyword {
			typ := env.resolveType(c)
			if _, custom := env.Runtime.Types.Get(typ); (custom || builtinTypeNames[typ]) && env.instanceOf(v, typ) {
				return true
			}
		}
	}
	return false
}
