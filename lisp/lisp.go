// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/benbjohnson/immutable"
	"github.com/luthersystems/clove/parser/token"
	"github.com/shopspring/decimal"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LNil is the type of the nil singleton.
	LNil
	// LBool values store 1 (true) or 0 (false) in LVal.Int.
	LBool
	// LLong values store a 64-bit integer in LVal.Int.
	LLong
	// LDouble values store a float64 in LVal.Float.
	LDouble
	// LDecimal values store a decimal.Decimal in LVal.Native.
	LDecimal
	// LBigInt values store a *big.Int in LVal.Native.  The referenced integer
	// is never modified.
	LBigInt
	// LString values store a string in LVal.Str.
	LString
	// LChar values store a rune in LVal.Int.
	LChar
	// LKeyword values store their name in LVal.Str and an optional namespace
	// in LVal.Ns.  Keywords are interned.
	LKeyword
	// LSymbol values store their name in LVal.Str and an optional namespace
	// in LVal.Ns.
	LSymbol
	// LList values are persistent linked lists.  LVal.Native holds the first
	// *listCell, or nil for the empty list.
	LList
	// LVector values store an *immutable.List in LVal.Native.
	LVector
	// LMap values store a *MapData in LVal.Native.  Map literals produced by
	// the reader additionally keep their raw key/value forms in LVal.Cells so
	// duplicate keys can be detected during evaluation.
	LMap
	// LSet values store a *SetData in LVal.Native.  Set literals keep their
	// raw element forms in LVal.Cells.
	LSet
	// LFun values store an *LFunData in LVal.Native.
	LFun
	// LMultiFn values store a *MultiFnData in LVal.Native.
	LMultiFn
	// LAtom values store an *AtomData in LVal.Native.
	LAtom
	// LNative values store a Go value in the LVal.Native field.
	LNative
	// LTaggedVal is a user-defined type that uses the following fields in an
	// LVal:
	// 		LVal.Str      The qualified type name
	// 		LVal.Cells[0] The user-data for the typed-value
	LTaggedVal
	// LError values represent a failure in flight.  Every operation returning
	// an LError aborts the surrounding evaluation until a try form catches
	// it.  LError values use the following fields:
	//		LVal.Str      The condition name
	//		LVal.Cells[0] A string message
	//		LVal.Cells[1] Optional data (the raised value of a value-exception)
	//		LVal.Native   A *CallStack copied when the error was created
	LError
	// LException is a caught LError.  Exceptions are ordinary values which
	// may be inspected or thrown again.  They share the LError layout.
	LException
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid:   "INVALID",
	LNil:       "nil",
	LBool:      "boolean",
	LLong:      "long",
	LDouble:    "double",
	LDecimal:   "decimal",
	LBigInt:    "bigint",
	LString:    "string",
	LChar:      "char",
	LKeyword:   "keyword",
	LSymbol:    "symbol",
	LList:      "list",
	LVector:    "vector",
	LMap:       "map",
	LSet:       "set",
	LFun:       "function",
	LMultiFn:   "multi-function",
	LAtom:      "atom",
	LNative:    "native",
	LTaggedVal: "custom-type",
	LError:     "error",
	LException: "exception",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LFunType denotes special functions.
type LFunType uint8

// LFunType constants.  LFunNone indicates a normal function.
const (
	LFunNone LFunType = iota
	LFunMacro
)

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the values originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Meta is an optional map of metadata attached to the value.
	Meta *LVal

	// Str used by symbols, keywords, strings, tagged values and errors.
	Str string

	// Ns is the namespace of a qualified symbol or keyword.
	Ns string

	// Cells used by many values as a storage space for lisp objects.
	Cells []*LVal

	// Type is the native type for a value in lisp.
	Type LType

	// Fields used for numeric types.
	Int   int64
	Float float64

	// FunType used to further classify LFun values.
	FunType LFunType

	// special is the interned special form named by an unqualified symbol.
	special specialOp
}

// Singleton LVals for nil, true, and false.
//
// These are pre-allocated, shared, immutable values returned by Nil() and
// Bool().  Code receiving them must never modify their fields.
var (
	singletonNil   = &LVal{Source: nativeSource(), Type: LNil}
	singletonTrue  = &LVal{Source: nativeSource(), Type: LBool, Int: 1}
	singletonFalse = &LVal{Source: nativeSource(), Type: LBool}
	singletonEmpty = &LVal{Source: nativeSource(), Type: LList}
)

var defaultSourceLocation = token.Native("<native code>")

func nativeSource() *token.Location {
	return defaultSourceLocation
}

// Nil returns the nil value.
func Nil() *LVal {
	return singletonNil
}

// Bool returns an LVal with truthiness identical to b.
func Bool(b bool) *LVal {
	if b {
		return singletonTrue
	}
	return singletonFalse
}

// Long returns an LVal representing the number x.
func Long(x int64) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LLong,
		Int:    x,
	}
}

// Int is a convenience wrapper around Long.
func Int(x int) *LVal {
	return Long(int64(x))
}

// Double returns an LVal representation of the number x
func Double(x float64) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LDouble,
		Float:  x,
	}
}

// Decimal returns an LVal representing the arbitrary precision number d.
func Decimal(d decimal.Decimal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LDecimal,
		Native: d,
	}
}

// BigInt returns an LVal representing x.  The caller must not modify x
// afterwards.
func BigInt(x *big.Int) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LBigInt,
		Native: x,
	}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LString,
		Str:    str,
	}
}

// Char returns an LVal representing the character c.
func Char(c rune) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LChar,
		Int:    int64(c),
	}
}

var keywords sync.Map

// Keyword returns the interned keyword named s.  A name of the form "ns/name"
// produces a namespace-qualified keyword.
func Keyword(s string) *LVal {
	ns, name := splitQualified(s)
	return QualifiedKeyword(ns, name)
}

// QualifiedKeyword returns the interned keyword ns/name.
func QualifiedKeyword(ns, name string) *LVal {
	key := name
	if ns != "" {
		key = ns + "/" + name
	}
	if kw, ok := keywords.Load(key); ok {
		return kw.(*LVal)
	}
	kw, _ := keywords.LoadOrStore(key, &LVal{
		Source: nativeSource(),
		Type:   LKeyword,
		Str:    name,
		Ns:     ns,
	})
	return kw.(*LVal)
}

// Symbol returns an LVal representing the symbol s.  A name of the form
// "ns/name" produces a namespace-qualified symbol.
func Symbol(s string) *LVal {
	ns, name := splitQualified(s)
	return QualifiedSymbol(ns, name)
}

// QualifiedSymbol returns a symbol with an explicit namespace.
func QualifiedSymbol(ns, name string) *LVal {
	sym := &LVal{
		Source: nativeSource(),
		Type:   LSymbol,
		Str:    name,
		Ns:     ns,
	}
	if ns == "" {
		sym.special = lookupSpecialOp(name)
	}
	return sym
}

func splitQualified(s string) (string, string) {
	i := strings.IndexByte(s, '/')
	if i <= 0 || i == len(s)-1 {
		return "", s
	}
	return s[:i], s[i+1:]
}

// Native returns an LVal containing a native Go value.
func Native(v interface{}) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNative,
		Native: v,
	}
}

// Vector returns an LVal representing a persistent vector containing cells.
func Vector(cells ...*LVal) *LVal {
	l := immutable.NewList[*LVal]()
	for _, c := range cells {
		l = l.Append(c)
	}
	return vectorFromList(l)
}

func vectorFromList(l *immutable.List[*LVal]) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LVector,
		Native: l,
	}
}

// TaggedValue returns a value of the user-defined type typ wrapping data.
func TaggedValue(typ string, data *LVal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LTaggedVal,
		Str:    typ,
		Cells:  []*LVal{data},
	}
}

// Value conveniently converts v to an LVal.  Types which can be represented
// directly in lisp will be converted to the appropriate LVal.  All other types
// will be turned into a Native LVal.
func Value(v interface{}) *LVal {
	switch v := v.(type) {
	case nil:
		return Nil()
	case *LVal:
		return v
	case bool:
		return Bool(v)
	case string:
		return String(v)
	case int:
		return Int(v)
	case int64:
		return Long(v)
	case float64:
		return Double(v)
	case decimal.Decimal:
		return Decimal(v)
	case *big.Int:
		return BigInt(v)
	case []*LVal:
		return List(v...)
	default:
		return Native(v)
	}
}

// WithSource returns a shallow copy of v located at loc.  Singletons and
// keywords are returned unmodified.
func (v *LVal) WithSource(loc *token.Location) *LVal {
	switch v.Type {
	case LNil, LBool, LKeyword:
		return v
	}
	cp := *v
	cp.Source = loc
	return &cp
}

// WithMeta returns a shallow copy of v carrying the metadata map meta.
func (v *LVal) WithMeta(meta *LVal) *LVal {
	cp := *v
	cp.Meta = meta
	return &cp
}

// MetaGet returns the metadata value stored under the keyword key.
func (v *LVal) MetaGet(key string) *LVal {
	if v.Meta == nil || v.Meta.Type != LMap {
		return Nil()
	}
	val, ok := v.Meta.MapData().Get(Keyword(key))
	if !ok {
		return Nil()
	}
	return val
}

// FunData returns the function data of an LFun.
func (v *LVal) FunData() *LFunData {
	fd, _ := v.Native.(*LFunData)
	return fd
}

// Builtin returns the Go implementation of a builtin function, if any.
func (v *LVal) Builtin() LBuiltin {
	if fd := v.FunData(); fd != nil {
		return fd.Builtin
	}
	return nil
}

// Env returns the defining environment of a closure.
func (v *LVal) Env() *LEnv {
	if fd := v.FunData(); fd != nil {
		return fd.Env
	}
	return nil
}

// IsMacro returns true if v is a macro function.
func (v *LVal) IsMacro() bool {
	return v.Type == LFun && v.FunType == LFunMacro
}

// Package returns the namespace which defined the function v.
func (v *LVal) Package() string {
	if fd := v.FunData(); fd != nil {
		return fd.Ns
	}
	return ""
}

// Docstring returns the docstring of the function or var metadata of v.
func (v *LVal) Docstring() string {
	if doc := v.MetaGet("doc"); doc.Type == LString {
		return doc.Str
	}
	if fd := v.FunData(); fd != nil {
		return fd.Doc
	}
	return ""
}

// UserData returns the user-data of a tagged value.
func (v *LVal) UserData() *LVal {
	if v.Type != LTaggedVal || len(v.Cells) == 0 {
		return Nil()
	}
	return v.Cells[0]
}

// DecimalValue returns the decimal stored in an LDecimal.
func (v *LVal) DecimalValue() decimal.Decimal {
	d, _ := v.Native.(decimal.Decimal)
	return d
}

// BigIntValue returns the integer stored in an LBigInt.
func (v *LVal) BigIntValue() *big.Int {
	x, _ := v.Native.(*big.Int)
	return x
}

// IsNil returns true if v is the nil value.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsNumeric returns true if v has a numeric type.
func (v *LVal) IsNumeric() bool {
	switch v.Type {
	case LLong, LDouble, LDecimal, LBigInt:
		return true
	}
	return false
}

// IsSeq returns true if v is a list or vector.
func (v *LVal) IsSeq() bool {
	return v.Type == LList || v.Type == LVector
}

// IsColl returns true if v is any persistent or mutable collection.
func (v *LVal) IsColl() bool {
	switch v.Type {
	case LList, LVector, LMap, LSet:
		return true
	}
	return false
}

// IsSymbol returns true if v is the unqualified symbol name.
func (v *LVal) IsSymbol(name string) bool {
	return v.Type == LSymbol && v.Ns == "" && v.Str == name
}

// QualifiedName returns the ns/name form of a symbol or keyword name.
func (v *LVal) QualifiedName() string {
	if v.Ns == "" {
		return v.Str
	}
	return v.Ns + "/" + v.Str
}

// ErrorMessage returns the message of an error or exception.
func (v *LVal) ErrorMessage() string {
	if len(v.Cells) == 0 {
		return ""
	}
	if v.Cells[0].Type == LString {
		return v.Cells[0].Str
	}
	return v.Cells[0].String()
}

// ErrorData returns the data attached to an error or exception.
func (v *LVal) ErrorData() *LVal {
	if len(v.Cells) < 2 {
		return Nil()
	}
	return v.Cells[1]
}

// CallStack returns the call stack captured by an error.
func (v *LVal) CallStack() *CallStack {
	stack, _ := v.Native.(*CallStack)
	return stack
}

// GetType returns a keyword naming v's type.
func GetType(v *LVal) *LVal {
	if v.Type == LTaggedVal {
		return Keyword(v.Str)
	}
	return Keyword(v.Type.String())
}

func (v *LVal) String() string {
	var b strings.Builder
	writeValue(&b, v, true)
	return b.String()
}

// Display returns the human readable representation of v used by str and
// println.  Strings and characters are rendered without quoting.
func (v *LVal) Display() string {
	switch v.Type {
	case LString:
		return v.Str
	case LChar:
		return string(rune(v.Int))
	}
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

// GoString supports %#v.
func (v *LVal) GoString() string {
	return fmt.Sprintf("#<%s %s>", v.Type, v)
}
