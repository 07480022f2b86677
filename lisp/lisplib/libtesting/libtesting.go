// Copyright © 2018 The ELPS authors

// Package libtesting collects the tests defined by the test module and runs
// them.
package libtesting

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/luthersystems/clove/lisp"
)

// Test is a named function of no arguments registered by deftest.
type Test struct {
	// Name is qualified with the namespace defining the test.
	Name string
	Fun  *lisp.LVal
}

// Result is the outcome of running one test.
type Result struct {
	Test    *Test
	Err     error
	Elapsed time.Duration
}

// Passed returns true if the test completed without failure.
func (r *Result) Passed() bool {
	return r.Err == nil
}

// TestSuite is an ordered set of named tests.
type TestSuite struct {
	mu     sync.Mutex
	tests  map[string]*Test
	torder []string
}

// NewTestSuite returns an empty suite.
func NewTestSuite() *TestSuite {
	return &TestSuite{
		tests: make(map[string]*Test),
	}
}

// WithSuite returns a Config installing the builtins which register tests in
// s and run them.
func WithSuite(s *TestSuite) lisp.Config {
	return lisp.WithBuiltins(s.Builtins()...)
}

// Add registers t.  A test with the same name as an earlier test replaces it
// but keeps its position.
func (s *TestSuite) Add(t *Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tests[t.Name] == nil {
		s.torder = append(s.torder, t.Name)
	}
	s.tests[t.Name] = t
}

// Len returns the number of tests in the suite.
func (s *TestSuite) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.torder)
}

// Tests returns the tests in the order they were first registered.
func (s *TestSuite) Tests() []*Test {
	s.mu.Lock()
	defer s.mu.Unlock()
	tests := make([]*Test, len(s.torder))
	for i, name := range s.torder {
		tests[i] = s.tests[name]
	}
	return tests
}

// Run calls the test function of t in env.
func (s *TestSuite) Run(env *lisp.LEnv, t *Test) *Result {
	start := time.Now()
	v := env.FunCall(t.Fun, nil)
	return &Result{
		Test:    t,
		Err:     lisp.GoError(v),
		Elapsed: time.Since(start),
	}
}

// RunAll runs every test whose name begins with prefix and reports each
// result to w.
func (s *TestSuite) RunAll(env *lisp.LEnv, prefix string, w io.Writer) []*Result {
	var results []*Result
	for _, t := range s.Tests() {
		if !strings.HasPrefix(t.Name, prefix) {
			continue
		}
		r := s.Run(env, t)
		if r.Passed() {
			fmt.Fprintf(w, "PASS %s (%v)\n", t.Name, r.Elapsed)
		} else {
			fmt.Fprintf(w, "FAIL %s: %v\n", t.Name, r.Err)
		}
		results = append(results, r)
	}
	return results
}

// Builtins returns the builtin functions bound to s.
func (s *TestSuite) Builtins() []*lisp.LBuiltinDef {
	return []*lisp.LBuiltinDef{
		{
			Name:    "register-test!",
			MinArgs: 2,
			MaxArgs: 2,
			Fun:     s.builtinRegister,
			Doc:     "Registers a function of no arguments as the test with the given qualified name.",
		},
		{
			Name:    "test-names",
			MinArgs: 0,
			MaxArgs: 0,
			Fun:     s.builtinNames,
			Doc:     "Returns the names of the registered tests.",
		},
		{
			Name:    "run-tests",
			MinArgs: 0,
			MaxArgs: 1,
			Fun:     s.builtinRun,
			Doc: "Runs the registered tests, or those of one namespace, printing each result. " +
				"Returns a map counting the tests which passed and failed.",
		},
	}
}

func (s *TestSuite) builtinRegister(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	name, fun := args[0], args[1]
	if name.Type != lisp.LString {
		return env.ErrorConditionf(lisp.CondTypeError, "register-test!: name is not a string: %v", lisp.GetType(name))
	}
	if fun.Type != lisp.LFun {
		return env.ErrorConditionf(lisp.CondTypeError, "register-test!: test is not a function: %v", lisp.GetType(fun))
	}
	s.Add(&Test{Name: name.Str, Fun: fun})
	return lisp.Nil()
}

func (s *TestSuite) builtinNames(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	tests := s.Tests()
	names := make([]*lisp.LVal, len(tests))
	for i, t := range tests {
		names[i] = lisp.String(t.Name)
	}
	return lisp.Vector(names...)
}

func (s *TestSuite) builtinRun(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
	prefix := ""
	if len(args) > 0 {
		switch ns := args[0]; ns.Type {
		case lisp.LString, lisp.LSymbol, lisp.LKeyword:
			prefix = ns.Str + "/"
		default:
			return env.ErrorConditionf(lisp.CondTypeError, "run-tests: namespace is not a name: %v", lisp.GetType(ns))
		}
	}
	var pass, fail int64
	for _, r := range s.RunAll(env, prefix, env.Runtime.Stdout) {
		if r.Passed() {
			pass++
		} else {
			fail++
		}
	}
	return lisp.MapOf(lisp.SortedKind,
		lisp.Keyword("pass"), lisp.Long(pass),
		lisp.Keyword("fail"), lisp.Long(fail))
}
