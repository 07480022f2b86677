// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luthersystems/clove/parser/token"
	"github.com/sirupsen/logrus"
)

// RunMode describes how an environment is being used by its host.
type RunMode string

// Possible RunMode values.
const (
	RunModeREPL   RunMode = "repl"
	RunModeScript RunMode = "script"
	RunModeApp    RunMode = "app"
)

// Runtime is the interpreter state shared by every Thread evaluating code
// against the same namespaces.  Runtime values are safe for concurrent use
// by multiple threads although the def and ns families of special forms are
// expected to run on one thread at a time.
type Runtime struct {
	Registry    *NamespaceRegistry
	Conditions  *Conditions
	Types       *TypeRegistry
	Builtins    BuiltinTable
	Reader      Reader
	Loader      ModuleLoader
	Interceptor Interceptor
	Profiler    Profiler
	Logger      *logrus.Logger
	Stdout      io.Writer
	Stderr      io.Writer

	// MaxStackHeight bounds the call stack of each Thread.
	MaxStackHeight int
	// MacroexpandOnLoad deep expands every top-level form of a loaded unit
	// before evaluating it.
	MacroexpandOnLoad bool
	RunMode           RunMode
	LoadPath          []string

	ctx     context.Context
	locks   sync.Map
	numsym  atomicCounter
	modules moduleSet
	files   moduleSet
}

// StandardRuntime returns a new Runtime with empty namespaces, the builtin
// conditions, no builtin functions, and output written to the standard
// streams.
func StandardRuntime() *Runtime {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return &Runtime{
		Registry:       NewRegistry(),
		Conditions:     NewConditions(),
		Types:          NewTypeRegistry(),
		Interceptor:    AcceptAll{},
		Logger:         logger,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		MaxStackHeight: DefaultMaxStackHeight,
		RunMode:        RunModeScript,
		ctx:            context.Background(),
	}
}

// NewEnv returns a root environment bound to a fresh Thread.  The thread
// starts in the user namespace and is cancelled along with ctx.
func (rt *Runtime) NewEnv(ctx context.Context) *LEnv {
	if ctx == nil {
		ctx = rt.ctx
	}
	th := &Thread{
		Runtime: rt,
		Stack:   &CallStack{MaxHeight: rt.MaxStackHeight},
		Ns:      rt.Registry.ComputeIfAbsent(UserNamespace),
		ctx:     ctx,
		start:   time.Now(),
	}
	return &LEnv{
		Runtime: rt,
		Thread:  th,
	}
}

// GenSym returns a new symbol name unique within the runtime.
func (rt *Runtime) GenSym() string {
	return fmt.Sprintf("gen%08d", rt.numsym.Add(1))
}

// lock returns the mutex associated with v for the locking special form.
// Keywords, strings and numbers share a mutex whenever they are equal.
func (rt *Runtime) lock(v *LVal) *sync.Mutex {
	var key interface{} = v
	switch v.Type {
	case LKeyword, LString, LSymbol, LLong:
		key = v.Type.String() + ":" + v.String()
	}
	mu, _ := rt.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (rt *Runtime) log() *logrus.Logger {
	if rt.Logger == nil {
		rt.Logger = logrus.StandardLogger()
	}
	return rt.Logger
}

// Thread is the state of one logical evaluation.  A Thread must only be
// used by one goroutine at a time.  Interrupt may be called from any
// goroutine.
type Thread struct {
	Runtime *Runtime
	Stack   *CallStack
	// Ns is the current namespace.
	Ns *Namespace
	// Loc is the location of the form being evaluated.
	Loc *token.Location

	ctx         context.Context
	dynamic     map[string][]*LVal
	interrupted atomic.Bool
	start       time.Time
}

// Context returns the context governing the thread.
func (th *Thread) Context() context.Context {
	return th.ctx
}

// Interrupt marks the thread interrupted.  Evaluation fails with an
// interrupted condition after the next function call returns.
func (th *Thread) Interrupt() {
	th.interrupted.Store(true)
}

// Interrupted returns true if the thread was interrupted or its context was
// cancelled.
func (th *Thread) Interrupted() bool {
	if th.interrupted.Load() {
		return true
	}
	return th.ctx != nil && th.ctx.Err() != nil
}

// Started returns the time at which the thread began evaluation.
func (th *Thread) Started() time.Time {
	return th.start
}

// PushDynamic rebinds the dynamic var named by the qualified name until the
// matching PopDynamic.
func (th *Thread) PushDynamic(name string, v *LVal) {
	if th.dynamic == nil {
		th.dynamic = make(map[string][]*LVal)
	}
	th.dynamic[name] = append(th.dynamic[name], v)
}

// PopDynamic removes the innermost binding of name.
func (th *Thread) PopDynamic(name string) {
	stack := th.dynamic[name]
	if len(stack) == 0 {
		panic("dynamic binding stack underflow: " + name)
	}
	stack[len(stack)-1] = nil
	if len(stack) == 1 {
		delete(th.dynamic, name)
		return
	}
	th.dynamic[name] = stack[:len(stack)-1]
}

// Dynamic returns the innermost active binding of name.
func (th *Thread) Dynamic(name string) (*LVal, bool) {
	stack := th.dynamic[name]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}

func (th *Thread) setDynamic(name string, v *LVal) bool {
	stack := th.dynamic[name]
	if len(stack) == 0 {
		return false
	}
	stack[len(stack)-1] = v
	return true
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}
