// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib"
	"github.com/luthersystems/clove/lisp/x/profiler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys.  Each may be set in the config file, by a flag or by
// an environment variable named CLOVE_KEY with dashes replaced by
// underscores.
const (
	keyPreload           = "preload"
	keyMacroexpandOnLoad = "macroexpand-on-load"
	keyRunMode           = "run-mode"
	keyLogLevel          = "log-level"
	keyMaxStackHeight    = "max-stack-height"
	keyMaxExecTime       = "max-exec-time"
	keyDeny              = "deny"
	keyLoadPath          = "load-path"
	keyProfiler          = "profiler"
	keyProfileOutput     = "profile-output"
)

const envPrefix = "CLOVE"

// Profiler names accepted by the profiler key.
const (
	profilerNone       = "none"
	profilerOtel       = "otel"
	profilerOpenCensus = "opencensus"
	profilerPprof      = "pprof"
	profilerCallgrind  = "callgrind"
)

// settings are the environment settings shared by every command.
type settings struct {
	Preload           []string
	MacroexpandOnLoad bool
	RunMode           lisp.RunMode
	LogLevel          logrus.Level
	MaxStackHeight    int
	MaxExecTime       time.Duration
	Deny              []string
	LoadPath          []string
	Profiler          string
	ProfileOutput     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyMacroexpandOnLoad, true)
	v.SetDefault(keyRunMode, string(lisp.RunModeScript))
	v.SetDefault(keyLogLevel, logrus.WarnLevel.String())
	v.SetDefault(keyMaxStackHeight, lisp.DefaultMaxStackHeight)
	v.SetDefault(keyProfiler, profilerNone)
}

// addEnvFlags defines the flags overriding settings and binds them to v.
func addEnvFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringSlice(keyPreload, nil, "Modules to load before evaluation.")
	flags.Bool(keyMacroexpandOnLoad, true, "Expand every macro of a loaded form before evaluating it.")
	flags.String(keyRunMode, string(lisp.RunModeScript), `Run mode reported to programs: "script" or "app".`)
	flags.String(keyLogLevel, logrus.WarnLevel.String(), "Level of runtime log messages.")
	flags.Int(keyMaxStackHeight, lisp.DefaultMaxStackHeight, "Maximum height of the call stack.")
	flags.Duration(keyMaxExecTime, 0, "Abort evaluation after this long (0 for no limit).")
	flags.StringSlice(keyDeny, nil, "Qualified names of functions programs may not call.")
	flags.StringSlice(keyLoadPath, nil, "Directories searched for modules.")
	flags.String(keyProfiler, profilerNone, "Profiler: none, otel, opencensus, pprof or callgrind.")
	flags.String(keyProfileOutput, "", "File written by the callgrind profiler.")
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

func loadSettings(v *viper.Viper) (*settings, error) {
	level, err := logrus.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	s := &settings{
		Preload:           v.GetStringSlice(keyPreload),
		MacroexpandOnLoad: v.GetBool(keyMacroexpandOnLoad),
		RunMode:           lisp.RunMode(v.GetString(keyRunMode)),
		LogLevel:          level,
		MaxStackHeight:    v.GetInt(keyMaxStackHeight),
		MaxExecTime:       v.GetDuration(keyMaxExecTime),
		Deny:              v.GetStringSlice(keyDeny),
		LoadPath:          v.GetStringSlice(keyLoadPath),
		Profiler:          strings.ToLower(v.GetString(keyProfiler)),
		ProfileOutput:     v.GetString(keyProfileOutput),
	}
	switch s.RunMode {
	case lisp.RunModeScript, lisp.RunModeApp, lisp.RunModeREPL:
	default:
		return nil, fmt.Errorf("invalid %s: %q", keyRunMode, s.RunMode)
	}
	if s.MaxStackHeight <= 0 {
		return nil, fmt.Errorf("invalid %s: %d", keyMaxStackHeight, s.MaxStackHeight)
	}
	switch s.Profiler {
	case profilerNone, profilerOtel, profilerOpenCensus, profilerPprof:
	case profilerCallgrind:
		if s.ProfileOutput == "" {
			return nil, fmt.Errorf("the %s profiler requires %s", profilerCallgrind, keyProfileOutput)
		}
	default:
		return nil, fmt.Errorf("unknown %s: %q", keyProfiler, s.Profiler)
	}
	return s, nil
}

// configs returns the environment configs realizing s.
func (s *settings) configs(stdout, stderr io.Writer) []lisp.Config {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(s.LogLevel)
	return []lisp.Config{
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
		lisp.WithLogger(logger),
		lisp.WithMaximumPhysicalStackHeight(s.MaxStackHeight),
		lisp.WithLoadPath(s.LoadPath...),
	}
}

// newEnv creates an environment in mode.  The sandbox is installed after
// the core and preload modules have loaded so it only governs the
// program.
func (s *settings) newEnv(mode lisp.RunMode, stdout, stderr io.Writer, extra ...lisp.Config) (*lisp.LEnv, error) {
	configs := append(s.configs(stdout, stderr), extra...)
	env, err := lisplib.CreateEnvironment(s.Preload, s.MacroexpandOnLoad, mode, configs...)
	if err != nil {
		return nil, err
	}
	if len(s.Deny) > 0 || s.MaxExecTime > 0 {
		env.Runtime.Interceptor = lisp.NewSandbox(s.Deny, s.MaxExecTime)
		env = env.Runtime.NewEnv(context.Background())
	}
	return env, nil
}

// startProfiler enables the configured profiler on env.  The returned
// function completes the profile.
func (s *settings) startProfiler(ctx context.Context, env *lisp.LEnv) (func() error, error) {
	rt := env.Runtime
	var p lisp.Profiler
	switch s.Profiler {
	case profilerNone:
		return func() error { return nil }, nil
	case profilerOtel:
		p = profiler.NewOpenTelemetryAnnotator(rt, ctx, profiler.WithBuiltinFilter(), profiler.WithDocLabeler())
	case profilerOpenCensus:
		p = profiler.NewOpenCensusAnnotator(rt, ctx, profiler.WithBuiltinFilter(), profiler.WithDocLabeler())
	case profilerPprof:
		p = profiler.NewPprofAnnotator(rt, ctx, profiler.WithBuiltinFilter(), profiler.WithDocLabeler())
	case profilerCallgrind:
		cg := profiler.NewCallgrindProfiler(rt, nil, profiler.WithBuiltinFilter())
		if err := cg.SetFile(s.ProfileOutput); err != nil {
			return nil, err
		}
		p = cg
	default:
		return nil, fmt.Errorf("unknown %s: %q", keyProfiler, s.Profiler)
	}
	if err := p.Enable(); err != nil {
		return nil, err
	}
	rt.Profiler = p
	return p.Complete, nil
}
