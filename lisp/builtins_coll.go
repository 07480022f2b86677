// Copyright © 2018 The ELPS authors

package lisp

import (
	"sort"
)

func collBuiltins() BuiltinTable {
	return BuiltinTable{
		pureBuiltin("list", 0, -1, builtinList, "Returns a list of the arguments."),
		pureBuiltin("list*", 1, -1, builtinListStar,
			"Returns a list of the arguments preceding the final sequence followed by its elements."),
		pureBuiltin("vector", 0, -1, builtinVector, "Returns a vector of the arguments."),
		pureBuiltin("vec", 1, 1, builtinVec, "Returns a vector of the elements of a collection."),
		pureBuiltin("hash-map", 0, -1, mapBuiltin("hash-map", HashKind), "Returns a hash map of key value pairs."),
		pureBuiltin("sorted-map", 0, -1, mapBuiltin("sorted-map", SortedKind), "Returns a sorted map of key value pairs."),
		pureBuiltin("ordered-map", 0, -1, mapBuiltin("ordered-map", OrderedKind),
			"Returns a map of key value pairs which iterates in insertion order."),
		builtin("mutable-map", 0, -1, mapBuiltin("mutable-map", MutableKind), "Returns a mutable map of key value pairs."),
		pureBuiltin("hash-set", 0, -1, setBuiltin(HashKind), "Returns a hash set of the arguments."),
		pureBuiltin("sorted-set", 0, -1, setBuiltin(SortedKind), "Returns a sorted set of the arguments."),
		builtin("mutable-set", 0, -1, setBuiltin(MutableKind), "Returns a mutable set of the arguments."),
		pureBuiltin("set", 1, 1, builtinSet, "Returns a hash set of the elements of a collection."),
		pureBuiltin("coll?", 1, 1, builtinIsColl, "Returns true if x is a collection."),
		pureBuiltin("sequential?", 1, 1, builtinIsSequential, "Returns true if x is a list or vector."),
		pureBuiltin("empty?", 1, 1, builtinIsEmpty, "Returns true if x is nil or an empty collection or string."),
		pureBuiltin("count", 1, 1, builtinCount, "Returns the number of elements of a collection or string."),
		pureBuiltin("cons", 2, 2, builtinCons, "Returns a list with x followed by the elements of coll."),
		pureBuiltin("conj", 1, -1, builtinConj, "Adds elements to a collection at its natural position."),
		pureBuiltin("first", 1, 1, builtinFirst, "Returns the first element of a collection or nil."),
		pureBuiltin("second", 1, 1, builtinSecond, "Returns the second element of a collection or nil."),
		pureBuiltin("last", 1, 1, builtinLast, "Returns the last element of a collection or nil."),
		pureBuiltin("rest", 1, 1, builtinRest, "Returns a list of all but the first element of a collection."),
		pureBuiltin("next", 1, 1, builtinNext, "Returns the elements after the first or nil when there are none."),
		pureBuiltin("nth", 2, 3, builtinNth,
			"Returns the element at an index.  Without a default an out of range index is an error."),
		pureBuiltin("get", 2, 3, builtinGet, "Returns the value associated with a key or a default."),
		pureBuiltin("get-in", 2, 3, builtinGetIn, "Returns the value at a path of keys or a default."),
		pureBuiltin("contains?", 2, 2, builtinContains, "Returns true if a collection contains a key."),
		builtin("assoc", 3, -1, builtinAssoc, "Returns a map or vector with keys associated to values."),
		builtin("dissoc", 1, -1, builtinDissoc, "Returns a map without the given keys."),
		builtin("assoc!", 3, -1, builtinAssocMutate, "Associates keys to values in a mutable map."),
		builtin("dissoc!", 1, -1, builtinDissocMutate, "Removes keys from a mutable map."),
		pureBuiltin("keys", 1, 1, builtinKeys, "Returns a list of the keys of a map."),
		pureBuiltin("vals", 1, 1, builtinVals, "Returns a list of the values of a map."),
		pureBuiltin("merge", 0, -1, builtinMerge, "Returns a map with the entries of every map argument."),
		pureBuiltin("seq", 1, 1, builtinSeq, "Returns a list of the elements of a collection or nil when it is empty."),
		pureBuiltin("concat", 0, -1, builtinConcat, "Returns a list of the elements of every collection."),
		pureBuiltin("reverse", 1, 1, builtinReverse, "Returns a list of the elements of a collection in reverse order."),
		pureBuiltin("into", 2, 2, builtinInto, "Returns to with every element of from added with conj."),
		pureBuiltin("range", 1, 3, builtinRange, "Returns a list of longs from start (inclusive) to end (exclusive) by step."),
		pureBuiltin("take", 2, 2, builtinTake, "Returns a list of the first n elements of a collection."),
		pureBuiltin("drop", 2, 2, builtinDrop, "Returns a list of all but the first n elements of a collection."),
		builtin("map", 2, -1, builtinMap,
			"Returns a list of the results of calling f with the first elements of each collection, then the second, and so on."),
		builtin("filter", 2, 2, builtinFilter, "Returns a list of the elements for which pred is truthy."),
		builtin("remove", 2, 2, builtinRemove, "Returns a list of the elements for which pred is falsy."),
		builtin("reduce", 2, 3, builtinReduce, "Reduces a collection with a function of two arguments."),
		builtin("every?", 2, 2, builtinEvery, "Returns true if pred is truthy for every element."),
		builtin("some", 2, 2, builtinSome, "Returns the first truthy result of pred applied to the elements, or nil."),
		builtin("sort", 1, 2, builtinSort, "Returns a sorted list of the elements of a collection."),
	}
}

func (env *LEnv) seqArg(form string, v *LVal) ([]*LVal, *LVal) {
	switch v.Type {
	case LNil:
		return nil, nil
	case LList, LVector, LSet, LMap, LString:
		return v.Items(), nil
	}
	return nil, env.ErrorConditionf(CondTypeError, "%s: argument is not a collection: %v", form, GetType(v))
}

func (env *LEnv) longArg(form string, v *LVal) (int, *LVal) {
	if v.Type != LLong {
		return 0, env.ErrorConditionf(CondTypeError, "%s: argument is not a long: %v", form, GetType(v))
	}
	return int(v.Int), nil
}

func builtinList(env *LEnv, args []*LVal) *LVal {
	return List(args...)
}

func builtinListStar(env *LEnv, args []*LVal) *LVal {
	rest, lerr := env.seqArg("list*", args[len(args)-1])
	if lerr != nil {
		return lerr
	}
	return List(append(append([]*LVal{}, args[:len(args)-1]...), rest...)...)
}

func builtinVector(env *LEnv, args []*LVal) *LVal {
	return Vector(args...)
}

func builtinVec(env *LEnv, args []*LVal) *LVal {
	if args[0].Type == LVector {
		return args[0]
	}
	items, lerr := env.seqArg("vec", args[0])
	if lerr != nil {
		return lerr
	}
	return Vector(items...)
}

func mapBuiltin(form string, kind CollKind) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		if len(args)%2 != 0 {
			return env.ErrorConditionf(CondArityError, "%s: odd number of arguments", form)
		}
		return MapOf(kind, args...)
	}
}

func setBuiltin(kind CollKind) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		return SetOf(kind, args...)
	}
}

func builtinSet(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("set", args[0])
	if lerr != nil {
		return lerr
	}
	return HashSet(items...)
}

func builtinIsColl(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].IsColl())
}

func builtinIsSequential(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].IsSeq())
}

func builtinIsEmpty(env *LEnv, args []*LVal) *LVal {
	switch args[0].Type {
	case LNil:
		return Bool(true)
	case LList, LVector, LMap, LSet, LString:
		return Bool(args[0].Len() == 0)
	}
	return env.ErrorConditionf(CondTypeError, "empty?: argument is not a collection: %v", GetType(args[0]))
}

func builtinCount(env *LEnv, args []*LVal) *LVal {
	switch args[0].Type {
	case LNil:
		return Int(0)
	case LList, LVector, LMap, LSet, LString:
		return Int(args[0].Len())
	}
	return env.ErrorConditionf(CondTypeError, "count: argument is not a collection: %v", GetType(args[0]))
}

func builtinCons(env *LEnv, args []*LVal) *LVal {
	switch args[1].Type {
	case LNil, LList:
		return Cons(args[0], args[1])
	}
	items, lerr := env.seqArg("cons", args[1])
	if lerr != nil {
		return lerr
	}
	return List(append([]*LVal{args[0]}, items...)...)
}

func builtinConj(env *LEnv, args []*LVal) *LVal {
	coll := args[0]
	for _, x := range args[1:] {
		coll = Conj(coll, x)
		if coll.Type == LError {
			return coll
		}
	}
	return coll
}

func builtinFirst(env *LEnv, args []*LVal) *LVal {
	return builtinNth(env, []*LVal{args[0], Int(0), Nil()})
}

func builtinSecond(env *LEnv, args []*LVal) *LVal {
	return builtinNth(env, []*LVal{args[0], Int(1), Nil()})
}

func builtinLast(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("last", args[0])
	if lerr != nil {
		return lerr
	}
	if len(items) == 0 {
		return Nil()
	}
	return items[len(items)-1]
}

func builtinRest(env *LEnv, args []*LVal) *LVal {
	if args[0].Type == LList {
		return args[0].Rest()
	}
	items, lerr := env.seqArg("rest", args[0])
	if lerr != nil {
		return lerr
	}
	if len(items) == 0 {
		return EmptyList()
	}
	return List(items[1:]...)
}

func builtinNext(env *LEnv, args []*LVal) *LVal {
	r := builtinRest(env, args)
	if r.Type == LList && r.IsEmpty() {
		return Nil()
	}
	return r
}

func builtinNth(env *LEnv, args []*LVal) *LVal {
	i, lerr := env.longArg("nth", args[1])
	if lerr != nil {
		return lerr
	}
	coll := args[0]
	switch coll.Type {
	case LNil:
	case LList, LVector, LString:
		if x, ok := coll.Nth(i); ok {
			return x
		}
	case LSet, LMap:
		items := coll.Items()
		if i >= 0 && i < len(items) {
			return items[i]
		}
	default:
		return env.ErrorConditionf(CondTypeError, "nth: argument is not a sequence: %v", GetType(coll))
	}
	if len(args) > 2 {
		return args[2]
	}
	return env.ErrorConditionf(CondTypeError, "nth: index out of range: %d", i)
}

func builtinGet(env *LEnv, args []*LVal) *LVal {
	dflt := Nil()
	if len(args) > 2 {
		dflt = args[2]
	}
	return lookup(args[0], args[1], dflt)
}

func builtinGetIn(env *LEnv, args []*LVal) *LVal {
	dflt := Nil()
	if len(args) > 2 {
		dflt = args[2]
	}
	path, lerr := env.seqArg("get-in", args[1])
	if lerr != nil {
		return lerr
	}
	v := args[0]
	for _, k := range path {
		x, ok := lookupOK(v, k)
		if !ok {
			return dflt
		}
		v = x
	}
	return v
}

// lookupOK distinguishes an absent key from one bound to nil.
func lookupOK(coll, key *LVal) (*LVal, bool) {
	missing := &LVal{Type: LNil}
	v := lookup(coll, key, missing)
	return v, v != missing
}

func builtinContains(env *LEnv, args []*LVal) *LVal {
	_, ok := lookupOK(args[0], args[1])
	return Bool(ok)
}

func builtinAssoc(env *LEnv, args []*LVal) *LVal {
	if len(args)%2 != 1 {
		return env.ErrorConditionf(CondArityError, "assoc: odd number of key value arguments")
	}
	coll := args[0]
	switch coll.Type {
	case LNil:
		coll = HashMap()
		fallthrough
	case LMap:
		m := coll.MapData()
		if m.Kind == MutableKind {
			return env.ErrorConditionf(CondTypeError, "assoc: map is mutable, use assoc!")
		}
		for i := 1; i < len(args); i += 2 {
			m = m.Assoc(args[i], args[i+1])
		}
		return mapFromData(m).WithMeta(coll.Meta)
	case LVector:
		vec := coll.VectorData()
		for i := 1; i < len(args); i += 2 {
			idx, lerr := env.longArg("assoc", args[i])
			if lerr != nil {
				return lerr
			}
			switch {
			case idx == vec.Len():
				vec = vec.Append(args[i+1])
			case idx >= 0 && idx < vec.Len():
				vec = vec.Set(idx, args[i+1])
			default:
				return env.ErrorConditionf(CondTypeError, "assoc: index out of range: %d", idx)
			}
		}
		return vectorFromList(vec).WithMeta(coll.Meta)
	case LTaggedVal:
		data := builtinAssoc(env, append([]*LVal{coll.UserData()}, args[1:]...))
		if data.Type == LError {
			return data
		}
		return TaggedValue(coll.Str, data)
	}
	return env.ErrorConditionf(CondTypeError, "assoc: argument is not a map or vector: %v", GetType(coll))
}

func builtinDissoc(env *LEnv, args []*LVal) *LVal {
	coll := args[0]
	switch coll.Type {
	case LNil:
		return coll
	case LMap:
		m := coll.MapData()
		if m.Kind == MutableKind {
			return env.ErrorConditionf(CondTypeError, "dissoc: map is mutable, use dissoc!")
		}
		for _, k := range args[1:] {
			m = m.Dissoc(k)
		}
		return mapFromData(m).WithMeta(coll.Meta)
	}
	return env.ErrorConditionf(CondTypeError, "dissoc: argument is not a map: %v", GetType(coll))
}

func (env *LEnv) mutableMap(form string, v *LVal) (*MapData, *LVal) {
	if v.Type != LMap || v.MapData().Kind != MutableKind {
		return nil, env.ErrorConditionf(CondTypeError, "%s: argument is not a mutable map: %v", form, GetType(v))
	}
	return v.MapData(), nil
}

func builtinAssocMutate(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mutableMap("assoc!", args[0])
	if lerr != nil {
		return lerr
	}
	if len(args)%2 != 1 {
		return env.ErrorConditionf(CondArityError, "assoc!: odd number of key value arguments")
	}
	for i := 1; i < len(args); i += 2 {
		m.Assoc(args[i], args[i+1])
	}
	return args[0]
}

func builtinDissocMutate(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mutableMap("dissoc!", args[0])
	if lerr != nil {
		return lerr
	}
	for _, k := range args[1:] {
		m.Dissoc(k)
	}
	return args[0]
}

func (env *LEnv) mapArg(form string, v *LVal) (*MapData, *LVal) {
	switch v.Type {
	case LMap:
		return v.MapData(), nil
	case LTaggedVal:
		if v.UserData().Type == LMap {
			return v.UserData().MapData(), nil
		}
	case LNil:
		return NewMapData(HashKind), nil
	}
	return nil, env.ErrorConditionf(CondTypeError, "%s: argument is not a map: %v", form, GetType(v))
}

func builtinKeys(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg("keys", args[0])
	if lerr != nil {
		return lerr
	}
	return List(m.Keys()...)
}

func builtinVals(env *LEnv, args []*LVal) *LVal {
	m, lerr := env.mapArg("vals", args[0])
	if lerr != nil {
		return lerr
	}
	entries := m.Entries()
	vals := make([]*LVal, len(entries))
	for i := range entries {
		vals[i] = entries[i].Val
	}
	return List(vals...)
}

func builtinMerge(env *LEnv, args []*LVal) *LVal {
	var m *MapData
	for _, x := range args {
		if x.Type == LNil {
			continue
		}
		if x.Type != LMap {
			return env.ErrorConditionf(CondTypeError, "merge: argument is not a map: %v", GetType(x))
		}
		if m == nil {
			m = x.MapData()
			if m.Kind == MutableKind {
				m = copyMapData(m, HashKind)
			}
			continue
		}
		for _, e := range x.MapData().Entries() {
			m = m.Assoc(e.Key, e.Val)
		}
	}
	if m == nil {
		return Nil()
	}
	return mapFromData(m)
}

func copyMapData(m *MapData, kind CollKind) *MapData {
	cp := NewMapData(kind)
	for _, e := range m.Entries() {
		cp = cp.Assoc(e.Key, e.Val)
	}
	return cp
}

func builtinSeq(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("seq", args[0])
	if lerr != nil {
		return lerr
	}
	if len(items) == 0 {
		return Nil()
	}
	return List(items...)
}

func builtinConcat(env *LEnv, args []*LVal) *LVal {
	var all []*LVal
	for _, x := range args {
		items, lerr := env.seqArg("concat", x)
		if lerr != nil {
			return lerr
		}
		all = append(all, items...)
	}
	return List(all...)
}

func builtinReverse(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("reverse", args[0])
	if lerr != nil {
		return lerr
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return List(items...)
}

func builtinInto(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("into", args[1])
	if lerr != nil {
		return lerr
	}
	return builtinConj(env, append([]*LVal{args[0]}, items...))
}

func builtinRange(env *LEnv, args []*LVal) *LVal {
	bounds := make([]int64, len(args))
	for i, x := range args {
		if x.Type != LLong {
			return env.ErrorConditionf(CondTypeError, "range: argument is not a long: %v", GetType(x))
		}
		bounds[i] = x.Int
	}
	start, end, step := int64(0), bounds[0], int64(1)
	if len(bounds) > 1 {
		start, end = bounds[0], bounds[1]
	}
	if len(bounds) > 2 {
		step = bounds[2]
	}
	if step == 0 {
		return env.ErrorConditionf(CondTypeError, "range: step is zero")
	}
	var items []*LVal
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		items = append(items, Long(i))
	}
	return List(items...)
}

func builtinTake(env *LEnv, args []*LVal) *LVal {
	n, lerr := env.longArg("take", args[0])
	if lerr != nil {
		return lerr
	}
	items, lerr := env.seqArg("take", args[1])
	if lerr != nil {
		return lerr
	}
	if n < 0 {
		n = 0
	}
	if n < len(items) {
		items = items[:n]
	}
	return List(items...)
}

func builtinDrop(env *LEnv, args []*LVal) *LVal {
	n, lerr := env.longArg("drop", args[0])
	if lerr != nil {
		return lerr
	}
	items, lerr := env.seqArg("drop", args[1])
	if lerr != nil {
		return lerr
	}
	if n < 0 {
		n = 0
	}
	if n > len(items) {
		n = len(items)
	}
	return List(items[n:]...)
}

func builtinMap(env *LEnv, args []*LVal) *LVal {
	f := args[0]
	colls := make([][]*LVal, len(args)-1)
	n := -1
	for i, c := range args[1:] {
		items, lerr := env.seqArg("map", c)
		if lerr != nil {
			return lerr
		}
		colls[i] = items
		if n < 0 || len(items) < n {
			n = len(items)
		}
	}
	out := make([]*LVal, n)
	for i := 0; i < n; i++ {
		fargs := make([]*LVal, len(colls))
		for j := range colls {
			fargs[j] = colls[j][i]
		}
		v := env.FunCall(f, fargs)
		if v.Type == LError {
			return v
		}
		out[i] = v
	}
	return List(out...)
}

func (env *LEnv) selectItems(form string, args []*LVal, keep bool) *LVal {
	items, lerr := env.seqArg(form, args[1])
	if lerr != nil {
		return lerr
	}
	var out []*LVal
	for _, x := range items {
		ok := env.FunCall(args[0], []*LVal{x})
		if ok.Type == LError {
			return ok
		}
		if True(ok) == keep {
			out = append(out, x)
		}
	}
	return List(out...)
}

func builtinFilter(env *LEnv, args []*LVal) *LVal {
	return env.selectItems("filter", args, true)
}

func builtinRemove(env *LEnv, args []*LVal) *LVal {
	return env.selectItems("remove", args, false)
}

func builtinReduce(env *LEnv, args []*LVal) *LVal {
	f := args[0]
	items, lerr := env.seqArg("reduce", args[len(args)-1])
	if lerr != nil {
		return lerr
	}
	var acc *LVal
	if len(args) == 3 {
		acc = args[1]
	} else {
		if len(items) == 0 {
			return env.FunCall(f, nil)
		}
		acc, items = items[0], items[1:]
	}
	for _, x := range items {
		acc = env.FunCall(f, []*LVal{acc, x})
		if acc.Type == LError {
			return acc
		}
	}
	return acc
}

func builtinEvery(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("every?", args[1])
	if lerr != nil {
		return lerr
	}
	for _, x := range items {
		ok := env.FunCall(args[0], []*LVal{x})
		if ok.Type == LError {
			return ok
		}
		if !True(ok) {
			return Bool(false)
		}
	}
	return Bool(true)
}

func builtinSome(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("some", args[1])
	if lerr != nil {
		return lerr
	}
	for _, x := range items {
		r := env.FunCall(args[0], []*LVal{x})
		if r.Type == LError || True(r) {
			return r
		}
	}
	return Nil()
}

func builtinSort(env *LEnv, args []*LVal) *LVal {
	items, lerr := env.seqArg("sort", args[len(args)-1])
	if lerr != nil {
		return lerr
	}
	if len(args) == 1 {
		sort.SliceStable(items, func(i, j int) bool {
			return CompareValues(items[i], items[j]) < 0
		})
		return List(items...)
	}
	cmp := args[0]
	var failure *LVal
	sort.SliceStable(items, func(i, j int) bool {
		if failure != nil {
			return false
		}
		r := env.FunCall(cmp, []*LVal{items[i], items[j]})
		switch r.Type {
		case LError:
			failure = r
			return false
		case LLong:
			return r.Int < 0
		}
		return True(r)
	})
	if failure != nil {
		return failure
	}
	return List(items...)
}
