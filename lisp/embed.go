// Copyright © 2018 The ELPS authors

package lisp

import (
	"reflect"
)

// True interprets v as a boolean and returns the result.  Only nil and false
// are falsy.
func True(v *LVal) bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Int != 0
	}
	return true
}

// Not interprets v as a boolean value and returns its negation.
func Not(v *LVal) bool {
	return !True(v)
}

// GoValue converts v to its natural representation in Go.  Sequences are
// turned into slices and maps into Go maps.  Symbols and keywords are
// converted to their qualified names.  The value Nil() is converted to nil.
// Functions are returned as is.
func GoValue(v *LVal) interface{} {
	switch v.Type {
	case LNil:
		return nil
	case LError:
		return (error)((*ErrorVal)(v))
	case LBool:
		return v.Int != 0
	case LSymbol, LKeyword:
		return v.QualifiedName()
	case LString:
		return v.Str
	case LChar:
		return rune(v.Int)
	case LLong:
		return v.Int
	case LDouble:
		return v.Float
	case LDecimal:
		return v.DecimalValue()
	case LBigInt:
		return v.BigIntValue()
	case LList, LVector, LSet:
		s, _ := GoSlice(v)
		return s
	case LMap:
		m, _ := GoMap(v)
		return m
	case LAtom:
		return GoValue(v.AtomData().Deref())
	case LNative:
		return v.Native
	}
	return v
}

// GoError returns an error that represents v.  If v is not LError then nil is
// returned.
func GoError(v *LVal) error {
	if v == nil || v.Type != LError {
		return nil
	}
	return (*ErrorVal)(v)
}

// GoString returns the string that v represents and the value true.  If v does
// not represent a string GoString returns a false second argument
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}

// SymbolName returns the qualified name of the symbol that v represents and
// the value true.  If v does not represent a symbol SymbolName returns a
// false second argument
func SymbolName(v *LVal) (string, bool) {
	if v.Type != LSymbol {
		return "", false
	}
	return v.QualifiedName(), true
}

// GoInt converts the numeric value that v represents to and int and returns it
// with the value true.  If v does not represent a number GoInt returns a
// false second argument
func GoInt(v *LVal) (int, bool) {
	switch v.Type {
	case LLong:
		return int(v.Int), true
	case LDouble:
		return int(v.Float), true
	case LDecimal:
		return int(v.DecimalValue().IntPart()), true
	case LBigInt:
		return int(v.BigIntValue().Int64()), true
	}
	return 0, false
}

// GoFloat64 converts the numeric value that v represents to a float64 and
// returns it with the value true.  If v does not represent a number GoFloat64
// returns a false second argument
func GoFloat64(v *LVal) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return toDouble(v), true
}

// GoSlice converts the elements of a list, vector or set to Go values and
// returns them with the value true.  If v is not one of those collections
// GoSlice returns a false second argument
func GoSlice(v *LVal) ([]interface{}, bool) {
	switch v.Type {
	case LList, LVector, LSet:
	default:
		return nil, false
	}
	items := v.Items()
	vs := make([]interface{}, len(items))
	for i := range vs {
		vs[i] = GoValue(items[i])
	}
	return vs, true
}

// GoMap converts an LMap to its Go equivalent and returns it with a true
// second argument.  If v does not represent a map GoMap returns a false second
// argument.  Maps with keys that have no comparable Go representation cannot
// be converted, in which case GoMap returns (nil, true).
func GoMap(v *LVal) (map[interface{}]interface{}, bool) {
	if v.Type != LMap {
		return nil, false
	}
	entries := v.MapData().Entries()
	m := make(gomap, len(entries))
	for _, e := range entries {
		if !checkGoMapInsert(m, e.Key, e.Val) {
			return nil, true
		}
	}
	return m, true
}

func checkGoMapInsert(m gomap, lk, lv *LVal) (ok bool) {
	// map keys must be comparable which is not known without reflection on
	// k's type.
	k := GoValue(lk)
	if k == nil || reflect.TypeOf(k).Comparable() {
		m[k] = GoValue(lv)
		return true
	}
	return false
}

type gomap = map[interface{}]interface{}
