// Copyright © 2018 The ELPS authors

// Package clovetest runs lisp source as Go tests.
package clovetest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib"
	"github.com/luthersystems/clove/lisp/lisplib/libtesting"
	"github.com/sirupsen/logrus"
)

// ErrorPrefix marks the expected result of an expression which must fail.
// The text following the prefix is the expected condition.
const ErrorPrefix = "!"

// TestSequence is a sequence of lisp expressions which are evaluated
// sequentially in one environment.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the printed result, or ErrorPrefix and a condition
	Output string // text written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewEnv returns an environment for tests with the embedded modules
// available.  Diagnostics are written to the log of t.
func NewEnv(t testing.TB, configs ...lisp.Config) (*lisp.LEnv, error) {
	logger := logrus.New()
	logger.SetOutput(NewLogger(t))
	logger.SetLevel(logrus.DebugLevel)
	base := []lisp.Config{
		lisp.WithLogger(logger),
		lisp.WithStderr(NewLogger(t)),
	}
	return lisplib.CreateEnvironment(nil, true, lisp.RunModeScript, append(base, configs...)...)
}

// Render returns the text a TestSequence expects for v.
func Render(v *lisp.LVal) string {
	if v.Type == lisp.LError {
		return ErrorPrefix + v.Str
	}
	return v.String()
}

// RunTestSuite runs each TestSequence in tests on isolated environments.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var out bytes.Buffer
			env, err := NewEnv(t, lisp.WithStdout(&out))
			if err != nil {
				t.Fatalf("test %d %q: %v", i, test.Name, err)
			}
			for j, expr := range test.TestSequence {
				out.Reset()
				v := env.EvalString(expr.Expr, "test")
				result := Render(v)
				if result != expr.Result {
					msg := ""
					if v.Type == lisp.LError {
						msg = ": " + lisp.GoError(v).Error()
					}
					t.Errorf("expr %d %q: expected result %s (got %s%s)", j, expr.Expr, expr.Result, result, msg)
				}
				if out.String() != expr.Output {
					t.Errorf("expr %d %q: expected output %q (got %q)", j, expr.Expr, expr.Output, out.String())
				}
			}
		})
	}
}

// Runner runs the tests defined by lisp source files.
type Runner struct {
	// Configs are applied to every environment the runner creates.
	Configs []lisp.Config

	// Teardown runs after each test.  Any error returned is reported as a
	// test failure.
	Teardown func(*lisp.LEnv) *lisp.LVal
}

func (r *Runner) load(t testing.TB, path string, source string) (*lisp.LEnv, *libtesting.TestSuite) {
	suite := libtesting.NewTestSuite()
	configs := append([]lisp.Config{libtesting.WithSuite(suite)}, r.Configs...)
	env, err := NewEnv(t, configs...)
	if err != nil {
		t.Fatalf("failed to initialize lisp environment: %v", err)
	}
	if lerr := env.LoadModule("test"); lerr.Type == lisp.LError {
		r.LispError(t, lisp.GoError(lerr))
		t.FailNow()
	}
	if lerr := env.EvalString(source, filepath.Base(path)); lerr.Type == lisp.LError {
		r.LispError(t, lisp.GoError(lerr))
		t.FailNow()
	}
	return env, suite
}

// RunTestFile loads the file at path and runs each test it defines as a
// subtest of t.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	source, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	r.RunTestSource(t, path, string(source))
}

// RunTestSource runs each test defined by source.  Every test runs in a
// fresh environment so one test cannot affect another.
func (r *Runner) RunTestSource(t *testing.T, path string, source string) {
	var names []string
	ok := t.Run("$load", func(t *testing.T) {
		_, suite := r.load(t, path, source)
		for _, test := range suite.Tests() {
			names = append(names, test.Name)
		}
	})
	if !ok {
		return
	}
	for i := range names {
		// Independent tests all run even when an earlier one fails.
		t.Run(strings.ReplaceAll(names[i], "/", "."), func(t *testing.T) {
			env, suite := r.load(t, path, source)
			if r.Teardown != nil {
				defer func() {
					if lerr := r.Teardown(env); lerr.Type == lisp.LError {
						r.LispError(t, lisp.GoError(lerr))
					}
				}()
			}
			res := suite.Run(env, suite.Tests()[i])
			if !res.Passed() {
				r.LispError(t, res.Err)
			}
		})
	}
}

// LispError reports err along with the lisp call stack when it has one.
func (r *Runner) LispError(t testing.TB, err error) {
	t.Helper()
	var lerr *lisp.ErrorVal
	if !errors.As(err, &lerr) {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	if _, ioerr := lerr.WriteTrace(&buf); ioerr != nil {
		t.Error(fmt.Errorf("io error: %w: %v", ioerr, err))
		return
	}
	t.Error(buf.String())
}

// RunBenchmark runs a standard benchmark that evaluates source in a fresh
// environment each iteration.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	for i := 0; i < b.N; i++ {
		env, err := NewEnv(b)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		v := env.EvalString(source, "benchmark")
		b.StopTimer()
		if v.Type == lisp.LError {
			b.Fatalf("benchmark: %v", v)
		}
	}
}
