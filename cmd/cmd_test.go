// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luthersystems/clove/lisp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if errOut.Len() > 0 {
		t.Log(errOut.String())
	}
	return out.String(), err
}

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.True(t, s.MacroexpandOnLoad)
	assert.Equal(t, lisp.RunModeScript, s.RunMode)
	assert.Equal(t, logrus.WarnLevel, s.LogLevel)
	assert.Equal(t, lisp.DefaultMaxStackHeight, s.MaxStackHeight)
	assert.Equal(t, profilerNone, s.Profiler)
	assert.Zero(t, s.MaxExecTime)
}

func TestLoadSettings(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set(keyPreload, []string{"test"})
	v.Set(keyRunMode, "app")
	v.Set(keyLogLevel, "debug")
	v.Set(keyMaxExecTime, "2s")
	v.Set(keyDeny, []string{"core/println"})
	v.Set(keyProfiler, "OTEL")
	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, s.Preload)
	assert.Equal(t, lisp.RunModeApp, s.RunMode)
	assert.Equal(t, logrus.DebugLevel, s.LogLevel)
	assert.Equal(t, 2*time.Second, s.MaxExecTime)
	assert.Equal(t, []string{"core/println"}, s.Deny)
	assert.Equal(t, profilerOtel, s.Profiler)
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := map[string]interface{}{
		keyRunMode:        "batch",
		keyLogLevel:       "loud",
		keyMaxStackHeight: 0,
		keyProfiler:       "perf",
	}
	for key, val := range tests {
		v := viper.New()
		setDefaults(v)
		v.Set(key, val)
		_, err := loadSettings(v)
		assert.Error(t, err, key)
	}

	v := viper.New()
	setDefaults(v)
	v.Set(keyProfiler, profilerCallgrind)
	_, err := loadSettings(v)
	assert.Error(t, err, "callgrind requires an output file")
}

func TestParseColorMode(t *testing.T) {
	for _, s := range []string{"", "auto", "always", "never", "NEVER"} {
		_, err := parseColorMode(s)
		assert.NoError(t, err, s)
	}
	_, err := parseColorMode("rainbow")
	assert.Error(t, err)
}

func TestRunExpressions(t *testing.T) {
	out, err := execute(t, RunCommand(WithViper(viper.New())),
		"-e", "-p", "(+ 1 2)", `(str "a" "b")`)
	require.NoError(t, err)
	assert.Equal(t, "3\n\"ab\"\n", out)
}

func TestRunFiles(t *testing.T) {
	lib := writeFile(t, "lib.clv", "(ns lib)\n(defn twice [x] (* 2 x))\n")
	main := writeFile(t, "main.clv", "(println (lib/twice 21))\n")
	out, err := execute(t, RunCommand(WithViper(viper.New())), lib, main)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRunFailure(t *testing.T) {
	path := writeFile(t, "bad.clv", "(def x 1)\n(first x)\n")
	_, err := execute(t, RunCommand(WithViper(viper.New())), path)
	var lerr *lisp.ErrorVal
	require.True(t, errors.As(err, &lerr), "%v", err)
	assert.Equal(t, lisp.CondTypeError, lerr.Condition())
	assert.Equal(t, path, lerr.Source.File)
	assert.Equal(t, 2, lerr.Source.Line)
}

func TestRunSandbox(t *testing.T) {
	v := viper.New()
	v.Set(keyDeny, []string{"core/println"})
	_, err := execute(t, RunCommand(WithViper(v)), "-e", `(println "hi")`)
	var lerr *lisp.ErrorVal
	require.True(t, errors.As(err, &lerr), "%v", err)
	assert.Equal(t, lisp.CondSecurity, lerr.Condition())
}

func TestRunWithBuiltins(t *testing.T) {
	greet := &lisp.LBuiltinDef{
		Name:    "host-greet",
		MinArgs: 1,
		MaxArgs: 1,
		Fun: func(env *lisp.LEnv, args []*lisp.LVal) *lisp.LVal {
			return lisp.String("hello " + args[0].Display())
		},
	}
	cmd := RunCommand(WithViper(viper.New()), WithEnvConfig(lisp.WithBuiltins(greet)))
	out, err := execute(t, cmd, "-e", "-p", `(host-greet "you")`)
	require.NoError(t, err)
	assert.Equal(t, "\"hello you\"\n", out)
}

func TestRunCallgrindProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "callgrind.out")
	v := viper.New()
	v.Set(keyProfiler, profilerCallgrind)
	v.Set(keyProfileOutput, profile)
	_, err := execute(t, RunCommand(WithViper(v)), "-e", "(defn f [x] (inc x)) (f 1)")
	require.NoError(t, err)
	b, err := os.ReadFile(profile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "events:")
	assert.Contains(t, string(b), "totals:")
}

func TestTestCommand(t *testing.T) {
	pass := writeFile(t, "pass.clv", `
(test/deftest adds (test/assert-eq 3 (+ 1 2)))
`)
	out, err := execute(t, TestCommand(WithViper(viper.New())), pass)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS user/adds")
	assert.Contains(t, out, "ok\n")

	fail := writeFile(t, "fail.clv", `
(test/deftest adds (test/assert-eq 3 (+ 1 2)))
(test/deftest breaks (test/assert-eq 4 (+ 1 2)))
`)
	out, err = execute(t, TestCommand(WithViper(viper.New())), fail)
	var silent *errSilent
	require.True(t, errors.As(err, &silent), "%v", err)
	assert.Equal(t, 1, silent.code)
	assert.Contains(t, out, "FAIL user/breaks")
	assert.Contains(t, out, "FAIL (1 failed)")
}

func TestDocCommand(t *testing.T) {
	out, err := execute(t, DocCommand(WithViper(viper.New())), "inc")
	require.NoError(t, err)
	assert.Contains(t, out, "core/inc")

	out, err = execute(t, DocCommand(WithViper(viper.New())), "-n", "core")
	require.NoError(t, err)
	assert.Contains(t, out, "inc\n")

	src := writeFile(t, "lib.clv", "(defn greet \"Greets someone by name.\" [who] who)\n")
	out, err = execute(t, DocCommand(WithViper(viper.New())), "-f", src, "greet")
	require.NoError(t, err)
	assert.Contains(t, out, "user/greet")
	assert.Contains(t, out, "Greets someone by name.")

	_, err = execute(t, DocCommand(WithViper(viper.New())), "no-such-thing")
	assert.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "repl", "test", "doc"} {
		assert.True(t, names[name], name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup(keyMaxExecTime))
}
