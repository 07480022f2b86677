// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"

	"github.com/sirupsen/logrus"
)

type catchClause struct {
	condition string
	name      *LVal
	body      []*LVal
}

type tryForm struct {
	body    []*LVal
	catches []catchClause
	finally []*LVal
	hasFin  bool
}

func (env *LEnv) parseTry(form string, args []*LVal) (*tryForm, *LVal) {
	t := &tryForm{}
	for i, x := range args {
		switch {
		case x.Type == LList && x.First().IsSymbol("catch"):
			items := x.Items()
			if len(items) < 3 {
				return nil, env.ErrorConditionf(CondArityError, "%s: catch requires a condition and a name", form)
			}
			cond := items[1]
			if cond.Type != LKeyword && cond.Type != LSymbol {
				return nil, env.ErrorConditionf(CondTypeError, "%s: catch condition is not a keyword: %v", form, GetType(cond))
			}
			if items[2].Type != LSymbol || items[2].Ns != "" {
				return nil, env.ErrorConditionf(CondTypeError, "%s: catch name is not a symbol: %v", form, items[2])
			}
			t.catches = append(t.catches, catchClause{
				condition: cond.QualifiedName(),
				name:      items[2],
				body:      items[3:],
			})
		case x.Type == LList && x.First().IsSymbol("finally"):
			// Only the first finally clause is evaluated.
			if !t.hasFin {
				t.finally = x.Rest().Items()
				t.hasFin = true
			}
		default:
			if len(t.catches) > 0 || t.hasFin {
				return nil, env.ErrorConditionf(CondTypeError, "%s: body form follows catch or finally: %v", form, x)
			}
			t.body = args[:i+1]
		}
	}
	return t, nil
}

// handler returns the first catch clause handling lerr.
func (t *tryForm) handler(conds *Conditions, lerr *LVal) *catchClause {
	for i := range t.catches {
		if conds.IsA(lerr.Str, t.catches[i].condition) {
			return &t.catches[i]
		}
	}
	return nil
}

func (env *LEnv) opTry(args []*LVal, with bool) *LVal {
	form := "try"
	if with {
		form = "try-with"
		if lerr := env.checkArgs(form, args, 1, -1); lerr != nil {
			return lerr
		}
		if args[0].Type != LVector {
			return env.ErrorConditionf(CondTypeError, "%s: resources must be a vector: %v", form, GetType(args[0]))
		}
		if args[0].Len()%2 != 0 {
			return env.ErrorConditionf(CondArityError, "%s: odd number of forms in resource vector", form)
		}
	}
	var bindings *LVal
	if with {
		bindings, args = args[0], args[1:]
	}
	t, lerr := env.parseTry(form, args)
	if lerr != nil {
		return lerr
	}

	tenv := env
	var resources []*LVal
	var r *LVal
	if with {
		tenv = newEnvN(env, bindings.Len()/2)
		resources, r = tenv.openResources(bindings)
	}
	if r == nil {
		r = tenv.evalBody(t.body, nil)
	}
	if r.Type == LError {
		if h := t.handler(env.Runtime.Conditions, r); h != nil {
			cenv := newEnvN(tenv, 1)
			cenv.Put(h.name, caught(r))
			r = cenv.evalBody(h.body, nil)
		}
	}
	if t.hasFin {
		fin := tenv.evalBody(t.finally, nil)
		if fin.Type == LError {
			if r.Type == LError {
				env.logSuppressed("finally", fin)
			} else {
				r = fin
			}
		}
	}
	if with {
		r = env.closeResources(resources, r)
	}
	return r
}

// openResources evaluates the resource bindings in env.  The resources opened
// before a failure are returned with the failure so that they are closed.
func (env *LEnv) openResources(bindings *LVal) ([]*LVal, *LVal) {
	cells := bindings.Items()
	resources := make([]*LVal, 0, len(cells)/2)
	for i := 0; i < len(cells); i += 2 {
		val := env.eval(cells[i+1], nil)
		if val.Type == LError {
			return resources, val
		}
		if !closable(val) {
			return resources, env.ErrorConditionf(CondTypeError, "try-with: resource is not closable: %v", GetType(val))
		}
		resources = append(resources, val)
		if lerr := env.Destructure(cells[i], val); lerr.Type == LError {
			return resources, lerr
		}
	}
	return resources, nil
}

func closable(v *LVal) bool {
	switch v.Type {
	case LNative:
		_, ok := v.Native.(io.Closer)
		return ok
	case LMap, LTaggedVal:
		return closeFun(v) != nil
	}
	return false
}

func closeFun(v *LVal) *LVal {
	m := v
	if m.Type == LTaggedVal {
		m = m.UserData()
	}
	if m.Type != LMap {
		return nil
	}
	fn, ok := m.MapData().Get(Keyword("close"))
	if !ok || fn.Type != LFun {
		return nil
	}
	return fn
}

// closeResources closes resources in reverse order.  Close failures never
// replace a failed result.  When r succeeded the first close failure is
// returned instead.
func (env *LEnv) closeResources(resources []*LVal, r *LVal) *LVal {
	var first *LVal
	for i := len(resources) - 1; i >= 0; i-- {
		lerr := env.closeResource(resources[i])
		if lerr == nil {
			continue
		}
		env.logSuppressed("close", lerr)
		if first == nil {
			first = lerr
		}
	}
	if first != nil && r.Type != LError {
		return first
	}
	return r
}

func (env *LEnv) closeResource(v *LVal) *LVal {
	if v.Type == LNative {
		if err := v.Native.(io.Closer).Close(); err != nil {
			return env.Error(err)
		}
		return nil
	}
	r := env.FunCall(closeFun(v), []*LVal{v})
	if r.Type == LError {
		return r
	}
	return nil
}

func (env *LEnv) logSuppressed(clause string, lerr *LVal) {
	env.Runtime.log().WithFields(logrus.Fields{
		"clause":    clause,
		"condition": lerr.Str,
		"namespace": env.Thread.Ns.Name,
	}).Warnf("suppressed failure: %s", lerr.ErrorMessage())
}
