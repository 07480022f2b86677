// Copyright © 2018 The ELPS authors

package lisp

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Version is the language version reported by *version*.
const Version = "1.0"

// CoreModule is the module loaded into the core namespace by
// CreateEnvironment.
const CoreModule = "core"

// Well-known global vars defined in the core namespace.
const (
	VarVersion       = "*version*"
	VarNewline       = "*newline*"
	VarLoadPath      = "*load-path*"
	VarRunMode       = "*run-mode*"
	VarLoadedModules = "*loaded-modules*"
	VarLoadedFiles   = "*loaded-files*"
)

// CreateEnvironment returns a root environment of a new Runtime.  The
// builtin functions and well-known globals are installed in the core
// namespace and the core module is loaded with every form macro expanded
// before evaluation.  The system namespaces are then sealed, the preload
// modules are loaded and the returned environment is left in the user
// namespace.
//
// The configs must supply a Reader and a ModuleLoader serving the core
// module.
func CreateEnvironment(preload []string, macroexpandOnLoad bool, mode RunMode, configs ...Config) (*LEnv, error) {
	rt := StandardRuntime()
	rt.Builtins = DefaultBuiltins()
	rt.MacroexpandOnLoad = macroexpandOnLoad
	rt.RunMode = mode
	env := rt.NewEnv(nil)
	for _, config := range configs {
		if lerr := config(env); lerr.Type == LError {
			return nil, GoError(lerr)
		}
	}
	if rt.Reader == nil {
		return nil, errors.New("environment has no reader")
	}
	if rt.Loader == nil {
		return nil, errors.New("environment has no module loader")
	}
	rt.installCore()

	th := env.Thread
	th.Ns = rt.Registry.ComputeIfAbsent(CoreNamespace)
	if lerr := env.loadModule(CoreModule, true); lerr.Type == LError {
		return nil, GoError(lerr)
	}
	rt.Registry.Seal()
	rt.log().WithField("namespaces", SystemNamespaces).Debug("sealed system namespaces")

	th.Ns = rt.Registry.ComputeIfAbsent(UserNamespace)
	for _, name := range preload {
		if lerr := env.LoadModule(name); lerr.Type == LError {
			return nil, GoError(lerr)
		}
	}
	th.Ns = rt.Registry.ComputeIfAbsent(UserNamespace)
	return env, nil
}

// installCore defines the builtin functions and well-known globals in the
// core namespace.  Later definitions of a builtin name replace earlier ones.
func (rt *Runtime) installCore() {
	core := rt.Registry.ComputeIfAbsent(CoreNamespace)
	for _, def := range rt.Builtins {
		var meta *LVal
		if def.Doc != "" {
			meta = HashMap(Keyword("doc"), String(def.Doc))
		}
		core.Define(&Var{
			Name:        def.Name,
			Value:       def.Value(CoreNamespace),
			Meta:        meta,
			Redefinable: def.Redefinable,
		})
	}
	loadPath := make([]*LVal, len(rt.LoadPath))
	for i := range rt.LoadPath {
		loadPath[i] = String(rt.LoadPath[i])
	}
	globals := []struct {
		name string
		val  *LVal
	}{
		{VarVersion, String(Version)},
		{VarNewline, String("\n")},
		{VarLoadPath, Vector(loadPath...)},
		{VarRunMode, Keyword(string(rt.RunMode))},
		{VarLoadedModules, List()},
		{VarLoadedFiles, List()},
	}
	for _, g := range globals {
		core.Define(&Var{Name: g.name, Value: g.val})
	}
}

// updateLoaded replaces the value of the core var name with the sorted
// names in set.  The var is written directly so that it may change after
// core is sealed.
func (rt *Runtime) updateLoaded(name string, set *moduleSet) {
	core := rt.Registry.Get(CoreNamespace)
	if core == nil {
		return
	}
	v, ok := core.Lookup(name)
	if !ok {
		return
	}
	names := set.names()
	vals := make([]*LVal, len(names))
	for i := range names {
		vals[i] = String(names[i])
	}
	core.SetValue(v, List(vals...))
}

// read parses every form of src.
func (env *LEnv) read(name, src string) ([]*LVal, *LVal) {
	rt := env.Runtime
	if rt.Reader == nil {
		return nil, env.Errorf("no reader configured")
	}
	forms, err := rt.Reader.Read(name, strings.NewReader(src))
	if err != nil {
		lerr := ParseError(err)
		env.ErrorAssociate(lerr)
		return nil, lerr
	}
	return forms, nil
}

// EvalString reads src and evaluates each form in order, returning the value
// of the last one.  When the runtime expands on load every form is macro
// expanded before it is evaluated.  The unit name is recorded in
// *loaded-files*.  Namespace changes made by src persist after EvalString
// returns.
func (env *LEnv) EvalString(src, unit string) *LVal {
	rt := env.Runtime
	if rt.files.add(unit) {
		rt.updateLoaded(VarLoadedFiles, &rt.files)
	}
	return env.evalUnit(unit, src, rt.MacroexpandOnLoad)
}

func (env *LEnv) evalUnit(unit, src string, expand bool) *LVal {
	forms, lerr := env.read(unit, src)
	if lerr != nil {
		return lerr
	}
	root := env.root()
	r := Nil()
	for _, form := range forms {
		if expand {
			form = root.MacroExpandAll(form)
			if form.Type == LError {
				return form
			}
		}
		r = root.Eval(form)
		if r.Type == LError {
			return r
		}
	}
	return r
}

// LoadModule loads the named module through the runtime's ModuleLoader.  A
// module is loaded at most once per runtime.  The thread's namespace is
// restored after the module is evaluated.
func (env *LEnv) LoadModule(name string) *LVal {
	return env.loadModule(name, env.Runtime.MacroexpandOnLoad)
}

func (env *LEnv) loadModule(name string, expand bool) *LVal {
	rt := env.Runtime
	if rt.Loader == nil {
		return env.Errorf("no module loader configured")
	}
	if !rt.modules.add(name) {
		return Nil()
	}
	src, err := rt.Loader.LoadModule(name)
	if err != nil {
		rt.modules.remove(name)
		return env.Errorf("load-module %s: %v", name, err)
	}
	th := env.Thread
	saved := th.Ns
	defer func() { th.Ns = saved }()
	r := env.evalUnit(name, src, expand)
	if r.Type == LError {
		rt.modules.remove(name)
		return r
	}
	rt.updateLoaded(VarLoadedModules, &rt.modules)
	rt.log().WithFields(logrus.Fields{
		"module": name,
		"expand": expand,
	}).Debug("loaded module")
	return Nil()
}
