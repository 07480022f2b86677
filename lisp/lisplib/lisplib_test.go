// Copyright © 2024 The ELPS authors

package lisplib_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, configs ...lisp.Config) *lisp.LEnv {
	env, err := lisplib.CreateEnvironment(nil, true, lisp.RunModeScript, configs...)
	require.NoError(t, err)
	return env
}

func eval(t *testing.T, env *lisp.LEnv, src string) string {
	v := env.EvalString(src, "test")
	require.NotEqual(t, lisp.LError, v.Type, "%v", v)
	return v.String()
}

func TestModules(t *testing.T) {
	assert.ElementsMatch(t, []string{"core", "test"}, lisplib.Modules())
}

func TestCreateEnvironment(t *testing.T) {
	env := newEnv(t)
	assert.Equal(t, lisp.UserNamespace, env.Namespace().Name)
	assert.Equal(t, `("core")`, eval(t, env, `*loaded-modules*`))
	assert.Equal(t, "3", eval(t, env, `(-> 1 inc (+ 1))`))
	assert.Equal(t, "6", eval(t, env, `(->> [1 2 3] (reduce +))`))
	assert.Equal(t, ":b", eval(t, env, `(cond false :a :else :b)`))
	assert.Equal(t, "nil", eval(t, env, `(when false 1)`))
	assert.Equal(t, "2", eval(t, env, `(and 1 2)`))
	assert.Equal(t, "1", eval(t, env, `(or nil 1)`))
	assert.Equal(t, "false", eval(t, env, `(or nil false)`))
	assert.Equal(t, "3", eval(t, env, `(if-let [x (get {:a 3} :a)] x 0)`))
	assert.Equal(t, "0", eval(t, env, `(if-let [x (get {:a 3} :b)] x 0)`))
	assert.Equal(t, "2", eval(t, env, `(get (frequencies [1 1 2]) 1)`))
}

func TestCoreFunctions(t *testing.T) {
	env := newEnv(t)
	eval(t, env, `(defn twice "Doubles x." [x] (* 2 x))`)
	assert.Equal(t, "8", eval(t, env, `((comp twice twice) 2)`))
	assert.Equal(t, "[2 4]", eval(t, env, `(mapv twice [1 2])`))
	assert.Equal(t, "7", eval(t, env, `((partial + 3) 4)`))
	assert.Equal(t, "true", eval(t, env, `((complement nil?) 1)`))
	assert.Equal(t, "{:a {:b 1}}", eval(t, env, `(assoc-in {} [:a :b] 1)`))
	assert.Equal(t, "{:a 2}", eval(t, env, `(update {:a 1} :a inc)`))
	assert.Equal(t, "10", eval(t, env, `(let [a (atom 0)] (dotimes [i 5] (swap! a + i)) @a)`))
	assert.Equal(t, "6", eval(t, env, `(let [a (atom 0)] (doseq [x [1 2 3]] (swap! a + x)) @a)`))
	assert.Equal(t, "2", eval(t, env, `(get (zipmap [:a :b] [1 2]) :b)`))
}

func TestTestModule(t *testing.T) {
	var out bytes.Buffer
	env := newEnv(t, lisp.WithStdout(&out))
	eval(t, env, `(load-module "test")`)
	eval(t, env, `(test/deftest adds (test/assert-eq 3 (+ 1 2)))`)
	eval(t, env, `(test/deftest fails (test/assert-eq 4 (+ 1 2)))`)
	eval(t, env, `(test/deftest raises (test/assert-throws :arity-error ((fn [x] x))))`)
	r := eval(t, env, `(run-tests)`)
	assert.Equal(t, "{:fail 1 :pass 2}", r)
	assert.Contains(t, out.String(), "FAIL user/fails")
	assert.Contains(t, out.String(), "expected 4 but got 3")
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	src := "(ns greet)\n(defn hello [who] (str \"hello \" who))\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.clv"), []byte(src), 0600))
	env := newEnv(t, lisp.WithLoadPath(dir))
	eval(t, env, `(load-module "greet")`)
	assert.Equal(t, `"hello world"`, eval(t, env, `(greet/hello "world")`))
	assert.Equal(t, lisp.UserNamespace, env.Namespace().Name)
}

func TestPreload(t *testing.T) {
	env, err := lisplib.CreateEnvironment([]string{"test"}, false, lisp.RunModeREPL)
	require.NoError(t, err)
	assert.Equal(t, `("core" "test")`, eval(t, env, `*loaded-modules*`))
	assert.Equal(t, ":repl", eval(t, env, `*run-mode*`))
	_, err = lisplib.CreateEnvironment([]string{"missing"}, false, lisp.RunModeREPL)
	assert.Error(t, err)
}
