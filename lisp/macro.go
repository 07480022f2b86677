// Copyright © 2018 The ELPS authors

package lisp

import (
	"strings"

	"github.com/luthersystems/clove/parser/token"
)

// lookupMacro returns the macro named by the symbol head, or nil.  Special
// form names and lexically bound symbols never name macros.
func (env *LEnv) lookupMacro(head *LVal) *LVal {
	if head.Ns == "" {
		if head.special != opNone {
			return nil
		}
		if _, ok := env.lookupLocal(head.Str); ok {
			return nil
		}
	}
	v := env.resolveVar(head)
	if v == nil {
		return nil
	}
	val := env.varValue(v)
	if !val.IsMacro() {
		return nil
	}
	return val
}

// expand1 calls mac with the unevaluated arguments of form.  The macro body
// runs in the macro's defining namespace.
func (env *LEnv) expand1(mac *LVal, form *LVal) *LVal {
	callSite := form.Source
	r := env.funCall(mac, form.Rest().Items())
	if r.Type == LError {
		return r
	}
	if callSite != nil && callSite.Pos >= 0 {
		r = stampMacroExpansion(r, callSite)
	}
	return r
}

// stampMacroExpansion gives an expanded list without a real location the
// location of the macro call so errors point to where the macro was
// invoked.
func stampMacroExpansion(v *LVal, callSite *token.Location) *LVal {
	if v.Type != LList || (v.Source != nil && v.Source.Pos >= 0) {
		return v
	}
	return v.WithSource(callSite)
}

// MacroExpand expands form while its head symbol names a macro.  Forms
// headed by special form names are never expanded.
func (env *LEnv) MacroExpand(form *LVal) *LVal {
	for form.Type == LList && !form.IsEmpty() {
		head := form.First()
		if head.Type != LSymbol {
			return form
		}
		mac := env.lookupMacro(head)
		if mac == nil {
			return form
		}
		form = env.expand1(mac, form)
		if form.Type == LError {
			return form
		}
	}
	return form
}

// MacroExpandAll expands every macro call in form.  The walk is pre-order
// and executes (ns name) forms as they are encountered so that later
// siblings expand against the namespace active at that point of the source.
// The thread's namespace is restored when MacroExpandAll returns.
func (env *LEnv) MacroExpandAll(form *LVal) *LVal {
	th := env.Thread
	saved := th.Ns
	defer func() { th.Ns = saved }()
	return env.expandAll(form)
}

func (env *LEnv) expandAll(form *LVal) *LVal {
	switch form.Type {
	case LList:
		return env.expandList(form)
	case LVector:
		items, changed, lerr := env.expandItems(form.Items())
		if lerr != nil {
			return lerr
		}
		if !changed {
			return form
		}
		vec := Vector(items...)
		vec.Source = form.Source
		vec.Meta = form.Meta
		return vec
	case LMap, LSet:
		if form.Cells == nil {
			return form
		}
		cells, changed, lerr := env.expandItems(form.Cells)
		if lerr != nil {
			return lerr
		}
		if !changed {
			return form
		}
		var lit *LVal
		if form.Type == LMap {
			lit = MapLiteral(cells)
		} else {
			lit = SetLiteral(cells)
		}
		lit.Source = form.Source
		lit.Meta = form.Meta
		return lit
	}
	return form
}

func (env *LEnv) expandList(form *LVal) *LVal {
	if form.IsEmpty() {
		return form
	}
	head := form.First()
	switch {
	case head.IsSymbol("quote"), head.IsSymbol("quasiquote"):
		return form
	case head.IsSymbol("ns"):
		if r := env.Eval(form); r.Type == LError {
			return r
		}
		return form
	}
	expanded := form
	if head.Type == LSymbol {
		expanded = env.MacroExpand(form)
		if expanded.Type == LError {
			return expanded
		}
		if expanded != form {
			return env.expandAll(expanded)
		}
	}
	items, changed, lerr := env.expandItems(form.Items())
	if lerr != nil {
		return lerr
	}
	if !changed {
		return form
	}
	return List(items...).WithSource(form.Source)
}

// expandItems expands each form of items in order.  The returned bool is
// true if any form changed.
func (env *LEnv) expandItems(items []*LVal) ([]*LVal, bool, *LVal) {
	changed := false
	out := make([]*LVal, len(items))
	for i, x := range items {
		y := env.expandAll(x)
		if y.Type == LError {
			return nil, false, y
		}
		if y != x {
			changed = true
		}
		out[i] = y
	}
	return out, changed, nil
}

// quasiquote expands the template form.  Symbols ending in # are replaced
// with generated symbols which are consistent within one template.
func (env *LEnv) quasiquote(form *LVal) *LVal {
	gensyms := make(map[string]*LVal)
	return env.qq(form, 1, gensyms)
}

func (env *LEnv) qq(form *LVal, depth int, gensyms map[string]*LVal) *LVal {
	switch form.Type {
	case LSymbol:
		if form.Ns == "" && len(form.Str) > 1 && strings.HasSuffix(form.Str, "#") {
			sym, ok := gensyms[form.Str]
			if !ok {
				sym = Symbol(strings.TrimSuffix(form.Str, "#") + "__" + env.Runtime.GenSym() + "__auto")
				gensyms[form.Str] = sym
			}
			return sym
		}
		return form
	case LList:
		if form.IsEmpty() {
			return form
		}
		head := form.First()
		switch {
		case head.IsSymbol("unquote"):
			arg, ok := form.Nth(1)
			if !ok || form.Len() != 2 {
				return env.ErrorConditionf(CondArityError, "unquote: wrong number of arguments (%d)", form.Len()-1)
			}
			if depth == 1 {
				return env.eval(arg, nil)
			}
			inner := env.qq(arg, depth-1, gensyms)
			if inner.Type == LError {
				return inner
			}
			return List(head, inner)
		case head.IsSymbol("quasiquote"):
			arg, ok := form.Nth(1)
			if !ok || form.Len() != 2 {
				return env.ErrorConditionf(CondArityError, "quasiquote: wrong number of arguments (%d)", form.Len()-1)
			}
			inner := env.qq(arg, depth+1, gensyms)
			if inner.Type == LError {
				return inner
			}
			return List(head, inner)
		}
		items, lerr := env.qqItems(form.Items(), depth, gensyms)
		if lerr != nil {
			return lerr
		}
		return List(items...).WithSource(form.Source)
	case LVector:
		items, lerr := env.qqItems(form.Items(), depth, gensyms)
		if lerr != nil {
			return lerr
		}
		return Vector(items...)
	case LMap, LSet:
		if form.Cells == nil {
			return form
		}
		items, lerr := env.qqItems(form.Cells, depth, gensyms)
		if lerr != nil {
			return lerr
		}
		if form.Type == LSet {
			return SetLiteral(items).WithSource(form.Source)
		}
		if len(items)%2 != 0 {
			return env.ErrorConditionf(CondTypeError, "map template contains an odd number of forms")
		}
		return MapLiteral(items).WithSource(form.Source)
	}
	return form
}

func (env *LEnv) qqItems(forms []*LVal, depth int, gensyms map[string]*LVal) ([]*LVal, *LVal) {
	items := make([]*LVal, 0, len(forms))
	for _, x := range forms {
		if depth == 1 && x.Type == LList && x.First().IsSymbol("splice-unquote") {
			arg, ok := x.Nth(1)
			if !ok || x.Len() != 2 {
				return nil, env.ErrorConditionf(CondArityError, "splice-unquote: wrong number of arguments (%d)", x.Len()-1)
			}
			spliced := env.eval(arg, nil)
			if spliced.Type == LError {
				return nil, spliced
			}
			switch spliced.Type {
			case LNil:
			case LList, LVector, LSet:
				items = append(items, spliced.Items()...)
			default:
				return nil, env.ErrorConditionf(CondTypeError, "splice-unquote: value is not a sequence: %v", GetType(spliced))
			}
			continue
		}
		y := env.qq(x, depth, gensyms)
		if y.Type == LError {
			return nil, y
		}
		items = append(items, y)
	}
	return items, nil
}
