// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a root environment or its runtime.
// Configs are applied before any module is loaded.
type Config func(env *LEnv) *LVal

// WithMaximumPhysicalStackHeight returns a Config that will prevent an
// execution environment from allowing the stack height to exceed n.
func WithMaximumPhysicalStackHeight(n int) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.MaxStackHeight = n
		env.Thread.Stack.MaxHeight = n
		return Nil()
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Reader = r
		return Nil()
	}
}

// WithStdout returns a Config that makes environments print to w instead of
// the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stdout = w
		return Nil()
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.  The runtime logger is redirected
// as well.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		env.Runtime.log().SetOutput(w)
		return Nil()
	}
}

// WithLogger returns a Config that replaces the runtime logger.
func WithLogger(logger *logrus.Logger) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Logger = logger
		return Nil()
	}
}

// WithModuleLoader returns a Config that makes environments load named
// modules from l.
func WithModuleLoader(l ModuleLoader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Loader = l
		return Nil()
	}
}

// WithInterceptor returns a Config that makes environments consult ic before
// and after every function call.
func WithInterceptor(ic Interceptor) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Interceptor = ic
		return Nil()
	}
}

// WithBuiltins returns a Config that installs additional builtin functions
// in the core namespace.  The functions are installed before the core module
// is loaded.
func WithBuiltins(defs ...*LBuiltinDef) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Builtins = append(env.Runtime.Builtins, defs...)
		return Nil()
	}
}

// WithProfiler returns a Config that makes environments report every
// function call to p.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Profiler = p
		return Nil()
	}
}

// WithContext returns a Config that sets the context.Context for the root
// environment.  Evaluation fails with an interrupted condition after the
// context is cancelled.
func WithContext(ctx context.Context) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.ctx = ctx
		env.Thread.ctx = ctx
		return Nil()
	}
}

// WithLoadPath returns a Config that sets the value of *load-path*.
func WithLoadPath(path ...string) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.LoadPath = path
		return Nil()
	}
}
