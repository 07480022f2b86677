// Copyright © 2018 The ELPS authors

// Package repl implements an interactive read-eval-print loop.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/clove/diagnostic"
	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib"
	"github.com/luthersystems/clove/parser"
)

// HistoryFileName is the name of the history file in the home directory.
const HistoryFileName = ".clove_history"

type config struct {
	stdin      io.ReadCloser
	stderr     io.Writer
	history    string
	noHistory  bool
	color      diagnostic.ColorMode
	envConfigs []lisp.Config
	preload    []string
	diagWidth  int
}

func newConfig(opts ...Option) *config {
	config := &config{
		color:     diagnostic.ColorAuto,
		diagWidth: 100,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Option configures a REPL.
type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile stores input history in path instead of the home
// directory.  An empty path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
		c.noHistory = path == ""
	}
}

// WithColor sets when failures are rendered with ANSI colors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithEnvConfig applies configs to the environment created by RunRepl.
func WithEnvConfig(configs ...lisp.Config) Option {
	return func(c *config) {
		c.envConfigs = append(c.envConfigs, configs...)
	}
}

// WithPreload loads the named modules into the environment created by
// RunRepl.
func WithPreload(modules ...string) Option {
	return func(c *config) {
		c.preload = append(c.preload, modules...)
	}
}

// RunRepl runs a repl in a new environment.
func RunRepl(opts ...Option) error {
	cfg := newConfig(opts...)
	configs := []lisp.Config{}
	if cfg.stderr != nil {
		configs = append(configs, lisp.WithStdout(cfg.stderr), lisp.WithStderr(cfg.stderr))
	}
	configs = append(configs, cfg.envConfigs...)
	env, err := lisplib.CreateEnvironment(cfg.preload, false, lisp.RunModeREPL, configs...)
	if err != nil {
		return fmt.Errorf("language initialization failure: %w", err)
	}
	return RunEnv(env, opts...)
}

// RunEnv runs a repl with env as a root environment.  Lines are collected
// until they hold whole forms, which are then evaluated together.  RunEnv
// returns nil when input is exhausted.
func RunEnv(env *lisp.LEnv, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}
	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	out := env.Runtime.Stderr

	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt(env),
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if !cfg.noHistory {
		rlCfg.HistoryFile = cfg.history
		if rlCfg.HistoryFile == "" {
			rlCfg.HistoryFile = historyPath()
		}
		ensureHistoryFilePermissions(rlCfg.HistoryFile)
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	renderer := &diagnostic.Renderer{Color: cfg.color, Width: cfg.diagWidth}
	var buf strings.Builder
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(prompt(env))
			continue
		}
		if err != nil {
			return nil
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if !parser.Complete(buf.String()) {
			rl.SetPrompt(strings.Repeat(" ", len(prompt(env))))
			continue
		}
		src := buf.String()
		buf.Reset()
		val := env.EvalString(src, "stdin")
		if val.Type == lisp.LError {
			_ = renderer.Render(out, diagnostic.FromLisp(val))
		} else {
			fmt.Fprintln(out, val) //nolint:errcheck // best-effort REPL output
		}
		rl.SetPrompt(prompt(env))
	}
}

// prompt names the current namespace.
func prompt(env *lisp.LEnv) string {
	return env.Thread.Ns.Name + "=> "
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFileName)
}

// ensureHistoryFilePermissions creates path if needed and restricts it to
// its owner.  Input history may hold secrets.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
