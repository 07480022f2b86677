// Copyright © 2018 The ELPS authors

package lisp

// recursionPoint is the target of recur.  A recursion point is established
// by loop and by every closure invocation and is only visible to forms in
// tail position of its body.
type recursionPoint struct {
	slots  []*LVal
	simple bool
	body   []*LVal
	env    *LEnv
}

// eval is the evaluator trampoline.  Forms in tail position replace v (and
// possibly env and rp) and continue the loop so that do, if, let, loop and
// recur do not grow the Go stack.  All other sub-evaluations are made with
// no recursion point.
func (env *LEnv) eval(v *LVal, rp *recursionPoint) *LVal {
	for {
		if v.Source != nil && v.Source.Pos >= 0 {
			env.Thread.Loc = v.Source
		}
		switch v.Type {
		case LSymbol:
			return env.Get(v)
		case LVector:
			return env.evalVector(v)
		case LMap:
			return env.evalMap(v)
		case LSet:
			return env.evalSet(v)
		case LList:
		default:
			return v
		}
		if v.IsEmpty() {
			return v
		}
		head := v.First()
		if head.Type == LSymbol && head.special != opNone {
			switch head.special {
			case opDo:
				next, lerr := env.evalButLast(v.Rest().Items())
				if lerr != nil {
					return lerr
				}
				v = next
				continue
			case opIf:
				args := v.Rest().Items()
				if len(args) < 2 || len(args) > 3 {
					return env.ErrorConditionf(CondArityError, "if: wrong number of arguments (%d)", len(args))
				}
				test := env.eval(args[0], nil)
				if test.Type == LError {
					return test
				}
				switch {
				case True(test):
					v = args[1]
				case len(args) == 3:
					v = args[2]
				default:
					return Nil()
				}
				continue
			case opLet:
				args := v.Rest().Items()
				if len(args) < 1 {
					return env.ErrorConditionf(CondArityError, "let: missing binding vector")
				}
				lenv, lerr := env.bindLet(args[0], "let")
				if lerr != nil {
					return lerr
				}
				next, lerr := lenv.evalButLast(args[1:])
				if lerr != nil {
					return lerr
				}
				env = lenv
				v = next
				continue
			case opLoop:
				args := v.Rest().Items()
				if len(args) < 1 {
					return env.ErrorConditionf(CondArityError, "loop: missing binding vector")
				}
				lenv, lerr := env.bindLet(args[0], "loop")
				if lerr != nil {
					return lerr
				}
				rp = loopPoint(lenv, args[0], args[1:])
				next, lerr := lenv.evalButLast(rp.body)
				if lerr != nil {
					return lerr
				}
				env = lenv
				v = next
				continue
			case opRecur:
				if rp == nil {
					return env.ErrorConditionf(CondIllegalRecur, "recur used outside of a loop or function body")
				}
				args := v.Rest().Items()
				if len(args) != len(rp.slots) {
					return env.ErrorConditionf(CondIllegalRecur, "recur expects %d arguments but got %d", len(rp.slots), len(args))
				}
				vals := make([]*LVal, len(args))
				for i, expr := range args {
					val := env.eval(expr, nil)
					if val.Type == LError {
						return val
					}
					vals[i] = val
				}
				if lerr := rp.rebind(vals); lerr.Type == LError {
					return lerr
				}
				env = rp.env
				next, lerr := env.evalButLast(rp.body)
				if lerr != nil {
					return lerr
				}
				v = next
				continue
			default:
				return env.special(head.special, v)
			}
		}
		if head.Type == LSymbol {
			if mac := env.lookupMacro(head); mac != nil {
				expanded := env.expand1(mac, v)
				if expanded.Type == LError {
					return expanded
				}
				v = expanded
				continue
			}
		}
		return env.apply(v)
	}
}

// evalBody evaluates body in order and returns the value of the final form,
// which is evaluated in tail position with respect to rp.
func (env *LEnv) evalBody(body []*LVal, rp *recursionPoint) *LVal {
	last, lerr := env.evalButLast(body)
	if lerr != nil {
		return lerr
	}
	return env.eval(last, rp)
}

// evalButLast evaluates every form of body except the last and returns the
// last form unevaluated.  An empty body yields nil.
func (env *LEnv) evalButLast(body []*LVal) (*LVal, *LVal) {
	if len(body) == 0 {
		return Nil(), nil
	}
	for _, expr := range body[:len(body)-1] {
		r := env.eval(expr, nil)
		if r.Type == LError {
			return nil, r
		}
	}
	return body[len(body)-1], nil
}

// bindLet creates a child scope of env and binds the pairs of the binding
// vector bindings sequentially.  Each value expression sees the bindings
// preceding it.
func (env *LEnv) bindLet(bindings *LVal, form string) (*LEnv, *LVal) {
	if bindings.Type != LVector {
		return nil, env.ErrorConditionf(CondTypeError, "%s: bindings must be a vector: %v", form, GetType(bindings))
	}
	cells := bindings.Items()
	if len(cells)%2 != 0 {
		return nil, env.ErrorConditionf(CondArityError, "%s: odd number of forms in binding vector", form)
	}
	lenv := newEnvN(env, len(cells)/2)
	for i := 0; i < len(cells); i += 2 {
		val := lenv.eval(cells[i+1], nil)
		if val.Type == LError {
			return nil, val
		}
		if lerr := lenv.Destructure(cells[i], val); lerr.Type == LError {
			return nil, lerr
		}
	}
	return lenv, nil
}

func loopPoint(env *LEnv, bindings *LVal, body []*LVal) *recursionPoint {
	cells := bindings.Items()
	rp := &recursionPoint{
		slots:  make([]*LVal, 0, len(cells)/2),
		simple: true,
		body:   body,
		env:    env,
	}
	for i := 0; i < len(cells); i += 2 {
		if cells[i].Type != LSymbol {
			rp.simple = false
		}
		rp.slots = append(rp.slots, cells[i])
	}
	return rp
}

// rebind replaces the values bound in the recursion point's environment.
func (rp *recursionPoint) rebind(vals []*LVal) *LVal {
	if rp.simple {
		for i, slot := range rp.slots {
			rp.env.Scope[slot.Str] = vals[i]
		}
		return Nil()
	}
	for i, slot := range rp.slots {
		if lerr := rp.env.Destructure(slot, vals[i]); lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

func (env *LEnv) evalVector(v *LVal) *LVal {
	items := v.Items()
	for i, x := range items {
		r := env.eval(x, nil)
		if r.Type == LError {
			return r
		}
		items[i] = r
	}
	vec := Vector(items...)
	vec.Source = v.Source
	vec.Meta = v.Meta
	return vec
}

// evalMap evaluates the raw key and value forms of a map literal.  Maps
// which were not produced by the reader evaluate to themselves.
func (env *LEnv) evalMap(v *LVal) *LVal {
	if v.Cells == nil {
		return v
	}
	m := NewMapData(v.MapData().Kind)
	for i := 0; i+1 < len(v.Cells); i += 2 {
		key := env.eval(v.Cells[i], nil)
		if key.Type == LError {
			return key
		}
		val := env.eval(v.Cells[i+1], nil)
		if val.Type == LError {
			return val
		}
		if _, dup := m.Get(key); dup {
			return env.ErrorConditionf(CondTypeError, "duplicate key: %v", key)
		}
		m = m.Assoc(key, val)
	}
	r := mapFromData(m)
	r.Source = v.Source
	r.Meta = v.Meta
	return r
}

func (env *LEnv) evalSet(v *LVal) *LVal {
	if v.Cells == nil {
		return v
	}
	s := NewSetData(v.SetData().Kind)
	for _, expr := range v.Cells {
		x := env.eval(expr, nil)
		if x.Type == LError {
			return x
		}
		if s.Contains(x) {
			return env.ErrorConditionf(CondTypeError, "duplicate set element: %v", x)
		}
		s = s.Add(x)
	}
	r := setFromData(s)
	r.Source = v.Source
	r.Meta = v.Meta
	return r
}
