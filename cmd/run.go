// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/luthersystems/clove/lisp"
	"github.com/spf13/cobra"
)

// unit is a named source text to evaluate.
type unit struct {
	name string
	src  string
}

func readUnits(args []string, expressions bool, excludes []string) ([]unit, error) {
	if expressions {
		units := make([]unit, len(args))
		for i, arg := range args {
			units[i] = unit{name: fmt.Sprintf("expr%d", i+1), src: arg}
		}
		return units, nil
	}
	paths, err := expandArgs(args, excludes)
	if err != nil {
		return nil, err
	}
	units := make([]unit, len(paths))
	for i, path := range paths {
		b, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			return nil, err
		}
		units[i] = unit{name: path, src: string(b)}
	}
	return units, nil
}

// withProfile runs fn with the configured profiler enabled on env.
func withProfile(ctx context.Context, s *settings, env *lisp.LEnv, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	complete, err := s.startProfiler(ctx, env)
	if err != nil {
		return err
	}
	err = fn()
	if cerr := complete(); err == nil {
		err = cerr
	}
	return err
}

// RunCommand returns the run command.
func RunCommand(opts ...Option) *cobra.Command {
	var (
		expressions bool
		print       bool
		excludes    []string
	)
	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Run lisp code",
		Long: `Run lisp code supplied via the command line or files.

Files are evaluated in order in one environment starting in the user
namespace.  An argument DIR/... runs every .clv file below DIR.  Evaluation
stops at the first uncaught failure, which is reported with its call stack.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCmdConfig(opts...)
			s, err := c.settings()
			if err != nil {
				return err
			}
			units, err := readUnits(args, expressions, excludes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			env, err := s.newEnv(s.RunMode, out, cmd.ErrOrStderr(), c.configs...)
			if err != nil {
				return err
			}
			return withProfile(cmd.Context(), s, env, func() error {
				for _, u := range units {
					v := env.EvalString(u.src, u.name)
					if v.Type == lisp.LError {
						return lisp.GoError(v)
					}
					if print {
						fmt.Fprintln(out, v) //nolint:errcheck // best-effort output
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&expressions, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	cmd.Flags().BoolVarP(&print, "print", "p", false,
		"Print the value of each file or expression to stdout")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil,
		"Skip files matching a pattern when expanding DIR/...")
	return cmd
}
