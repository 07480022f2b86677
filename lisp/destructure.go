// Copyright © 2018 The ELPS authors

package lisp

// Destructure binds the pattern against val in env's innermost scope.  A
// pattern is a symbol, a vector pattern or a map pattern.
//
// Vector patterns bind elements positionally.  The symbol & introduces a
// pattern for the remaining elements and :as binds the entire value.
//
//		[a b & more :as all]
//
// Map patterns bind symbols to the values of keys.  The :keys, :strs and
// :syms directives bind symbols to keyword, string and symbol keys named
// after them.  The :or map supplies default expressions for absent keys.
//
//		{a :a, [x y] :point, :keys [b c], :or {c 3}, :as m}
//
// The symbol _ matches anything and binds nothing.
func (env *LEnv) Destructure(pattern, val *LVal) *LVal {
	switch pattern.Type {
	case LSymbol:
		if pattern.Ns != "" {
			return env.ErrorConditionf(CondTypeError, "cannot bind qualified symbol: %v", pattern)
		}
		if pattern.Str != "_" {
			env.Put(pattern, val)
		}
		return Nil()
	case LVector:
		return env.destructureSeq(pattern, val)
	case LMap:
		return env.destructureMap(pattern, val)
	}
	return env.ErrorConditionf(CondTypeError, "unsupported binding pattern: %v", pattern)
}

func (env *LEnv) destructureSeq(pattern, val *LVal) *LVal {
	var items []*LVal
	switch val.Type {
	case LNil:
	case LList, LVector, LString, LSet, LMap:
		items = val.Items()
	default:
		return env.ErrorConditionf(CondTypeError, "cannot destructure %s with sequence pattern %v", GetType(val), pattern)
	}
	cells := pattern.Items()
	pos := 0
	rested := false
	for i := 0; i < len(cells); i++ {
		p := cells[i]
		isAs := p.Type == LKeyword && p.Ns == "" && p.Str == "as"
		if rested && !isAs {
			return env.ErrorConditionf(CondTypeError, "unexpected %v after rest pattern in %v", p, pattern)
		}
		switch {
		case p.IsSymbol("&"):
			if i+1 >= len(cells) {
				return env.ErrorConditionf(CondTypeError, "missing rest pattern in %v", pattern)
			}
			i++
			rest := Nil()
			if pos < len(items) {
				rest = List(items[pos:]...)
			}
			if lerr := env.Destructure(cells[i], rest); lerr.Type == LError {
				return lerr
			}
			pos = len(items)
			rested = true
		case isAs:
			if i+1 >= len(cells) || cells[i+1].Type != LSymbol {
				return env.ErrorConditionf(CondTypeError, ":as must be followed by a symbol in %v", pattern)
			}
			i++
			env.Put(cells[i], val)
		default:
			x := Nil()
			if pos < len(items) {
				x = items[pos]
			}
			pos++
			if lerr := env.Destructure(p, x); lerr.Type == LError {
				return lerr
			}
		}
	}
	return Nil()
}

func (env *LEnv) destructureMap(pattern, val *LVal) *LVal {
	m := val
	if m.Type == LTaggedVal {
		m = m.UserData()
	}
	if m.Type != LMap && m.Type != LNil {
		return env.ErrorConditionf(CondTypeError, "cannot destructure %s with map pattern %v", GetType(val), pattern)
	}
	get := func(key *LVal) (*LVal, bool) {
		if m.Type == LNil {
			return nil, false
		}
		return m.MapData().Get(key)
	}
	pdata := pattern.MapData()
	defaults, _ := pdata.Get(Keyword("or"))
	if defaults != nil && defaults.Type != LMap {
		return env.ErrorConditionf(CondTypeError, ":or must be followed by a map in %v", pattern)
	}
	value := func(sym, key *LVal) *LVal {
		if x, ok := get(key); ok {
			return x
		}
		if defaults != nil && sym.Type == LSymbol {
			if expr, ok := defaults.MapData().Get(sym); ok {
				return env.eval(expr, nil)
			}
		}
		return Nil()
	}
	for _, e := range pdata.Entries() {
		k := e.Key
		if k.Type == LKeyword && k.Ns == "" {
			switch k.Str {
			case "or":
				continue
			case "as":
				if e.Val.Type != LSymbol {
					return env.ErrorConditionf(CondTypeError, ":as must be followed by a symbol in %v", pattern)
				}
				env.Put(e.Val, val)
				continue
			case "keys", "strs", "syms":
				if !e.Val.IsSeq() {
					return env.ErrorConditionf(CondTypeError, ":%s must be followed by a vector of symbols in %v", k.Str, pattern)
				}
				for _, sym := range e.Val.Items() {
					if sym.Type != LSymbol {
						return env.ErrorConditionf(CondTypeError, ":%s must be followed by a vector of symbols in %v", k.Str, pattern)
					}
					var key *LVal
					switch k.Str {
					case "keys":
						key = QualifiedKeyword(sym.Ns, sym.Str)
					case "strs":
						key = String(sym.Str)
					default:
						key = QualifiedSymbol(sym.Ns, sym.Str)
					}
					x := value(Symbol(sym.Str), key)
					if x.Type == LError {
						return x
					}
					env.Put(Symbol(sym.Str), x)
				}
				continue
			}
		}
		x := value(k, e.Val)
		if x.Type == LError {
			return x
		}
		if lerr := env.Destructure(k, x); lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}
