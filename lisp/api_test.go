// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/luthersystems/clove/clovetest"
	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxDeniesCall(t *testing.T) {
	var out bytes.Buffer
	env, err := clovetest.NewEnv(t,
		lisp.WithStdout(&out),
		lisp.WithInterceptor(lisp.NewSandbox([]string{"core/println"}, 0)))
	require.NoError(t, err)

	v := env.EvalString(`(println "hello")`, "test")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondSecurity, v.Str)
	assert.Empty(t, out.String())

	v = env.EvalString(`(print "hello")`, "test")
	assert.Equal(t, "nil", v.String())
	assert.Equal(t, "hello", out.String())
}

func TestSandboxTimeBudget(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	env.Runtime.Interceptor = lisp.NewSandbox(nil, time.Nanosecond)
	thread := env.Runtime.NewEnv(context.Background())
	time.Sleep(time.Millisecond)
	v := thread.EvalString("(+ 1 2)", "test")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondInterrupted, v.Str)
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env, err := clovetest.NewEnv(t, lisp.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, "3", env.EvalString("(+ 1 2)", "test").String())

	cancel()
	v := env.EvalString("(+ 1 2)", "test")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondInterrupted, v.Str)
}

func TestThreadInterrupt(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	v := env.EvalString("(defn spin [i] (inc i))", "test")
	require.NotEqual(t, lisp.LError, v.Type, v.String())

	go func() {
		time.Sleep(10 * time.Millisecond)
		env.Thread.Interrupt()
	}()
	v = env.EvalString("(loop [i 0] (recur (spin i)))", "test")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondInterrupted, v.Str)
}

func TestStackOverflow(t *testing.T) {
	env, err := clovetest.NewEnv(t, lisp.WithMaximumPhysicalStackHeight(100))
	require.NoError(t, err)
	v := env.EvalString(`
		(defn deep [n] (+ 1 (deep n)))
		(deep 1)`, "test")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondStackOverflow, v.Str)

	v = env.EvalString(`
		(defn shallow [n] (if (pos? n) (+ 1 (shallow (dec n))) 0))
		(shallow 50)`, "test")
	assert.Equal(t, "50", v.String())
}

func TestDoc(t *testing.T) {
	var out bytes.Buffer
	env, err := clovetest.NewEnv(t, lisp.WithStdout(&out))
	require.NoError(t, err)

	v := env.EvalString(`(defn sq "Squares x." [x] (* x x))`, "test")
	require.Equal(t, "user/sq", v.String())
	v = env.EvalString("(doc sq)", "test")
	require.Equal(t, "nil", v.String())
	assert.Contains(t, out.String(), "user/sq\n(sq x)\n")
	assert.Contains(t, out.String(), "Squares x.")

	out.Reset()
	v = env.EvalString("(doc if)", "test")
	require.Equal(t, "nil", v.String())
	assert.True(t, strings.HasPrefix(out.String(), strings.Repeat("-", 72)))
	assert.Contains(t, out.String(), "(if test then else?)")

	v = env.EvalString("(doc nothing-here)", "test")
	assert.Equal(t, lisp.CondUnresolvedSymbol, v.Str)
}

func TestGoError(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)

	assert.NoError(t, lisp.GoError(lisp.Int(1)))

	v := env.EvalString(`
		(defn fail [] (throw (ex :boom "it broke")))
		(fail)`, "test")
	err = lisp.GoError(v)
	require.Error(t, err)
	var lerr *lisp.ErrorVal
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "boom", lerr.Condition())
	assert.Equal(t, "it broke", lerr.ErrorMessage())
	assert.Contains(t, err.Error(), "boom: it broke")

	var trace bytes.Buffer
	_, err = lerr.WriteTrace(&trace)
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "Stack Trace")
	assert.Contains(t, trace.String(), "user/fail")

	_, ok := lisp.RaisedValue(lerr)
	assert.False(t, ok)
}

func TestRaisedValue(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	v := env.EvalString("(throw {:code 7})", "test")
	raised, ok := lisp.RaisedValue(lisp.GoError(v))
	require.True(t, ok)
	assert.Equal(t, "{:code 7}", raised.String())
}

func TestFunCall(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	fn := env.EvalString("(fn [x] (* x 2))", "test")
	require.Equal(t, lisp.LFun, fn.Type)
	assert.Equal(t, "42", env.FunCall(fn, []*lisp.LVal{lisp.Int(21)}).String())

	r := env.FunCall(lisp.Keyword("a"), []*lisp.LVal{lisp.MapOf(lisp.SortedKind, lisp.Keyword("a"), lisp.Int(1))})
	assert.Equal(t, "1", r.String())

	r = env.FunCall(lisp.Int(1), nil)
	assert.Equal(t, lisp.CondNotApplicable, r.Str)
}

func TestCustomBuiltin(t *testing.T) {
	double := &lisp.LBuiltinDef{
		Name:    "host-double",
		MinArgs: 1,
		MaxArgs: 1,
		Doc:     "Doubles a long.",
		Fun: func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			if args[0].Type != lisp.LLong {
				return env.ErrorConditionf(lisp.CondTypeError, "host-double: not a long")
			}
			return lisp.Int(2 * int(args[0].Int))
		},
	}
	env, err := clovetest.NewEnv(t, lisp.WithBuiltins(double))
	require.NoError(t, err)
	assert.Equal(t, "8", env.EvalString("(host-double 4)", "test").String())
	assert.Equal(t, "#<builtin core/host-double>", env.EvalString("host-double", "test").String())
	assert.Equal(t, lisp.CondTypeError, env.EvalString(`(host-double "x")`, "test").Str)
	assert.Equal(t, lisp.CondArityError, env.EvalString("(host-double)", "test").Str)
}

func TestMacroExpandAllIdempotent(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	forms, err := rdparser.ReadAll("test", `(when-let [x 1] (-> x inc (* 2)))`)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	once := env.MacroExpandAll(forms[0])
	require.NotEqual(t, lisp.LError, once.Type, once.String())
	twice := env.MacroExpandAll(once)
	assert.Equal(t, once.String(), twice.String())
	assert.Equal(t, "4", env.Eval(once).String())
}

func TestReaderRoundTrip(t *testing.T) {
	src := `(a [1 2.5 "s\n"] {:k #{:x}} #\a 1.5M 3N nil true ns/sym)`
	forms, err := rdparser.ReadAll("test", src)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	again, err := rdparser.ReadAll("test", forms[0].String())
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, forms[0].String(), again[0].String())
}

func TestReaderRoundTripChars(t *testing.T) {
	tests := []struct {
		source  string
		printed string
	}{
		{`#\a`, `#\a`},
		{`#\space`, `#\space`},
		{`#\newline`, `#\newline`},
		{`#\tab`, `#\tab`},
		{`#\(`, `#\(`},
		{`#\)`, `#\)`},
		{`#\;`, `#\;`},
		{`#\"`, `#\"`},
		{`#\u00A0`, `#\u00A0`},
		{`#\u0007`, `#\u0007`},
		{`#\u03BB`, `#\λ`},
		{`[#\( #\space #\]]`, `[#\( #\space #\]]`},
	}
	for _, test := range tests {
		forms, err := rdparser.ReadAll("test", test.source)
		require.NoError(t, err, test.source)
		require.Len(t, forms, 1, test.source)
		printed := forms[0].String()
		assert.Equal(t, test.printed, printed, test.source)
		again, err := rdparser.ReadAll("test", printed)
		require.NoError(t, err, printed)
		require.Len(t, again, 1, printed)
		assert.True(t, forms[0].Equal(again[0]), "%s reread as %s", printed, again[0])
	}
}

func TestLoadedFiles(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	env.EvalString("1", "first.clv")
	v := env.EvalString("*loaded-files*", "second.clv")
	assert.Contains(t, v.String(), `"first.clv"`)
	assert.Contains(t, v.String(), `"second.clv"`)
	v = env.EvalString("*loaded-modules*", "test")
	assert.Contains(t, v.String(), `"core"`)
}
