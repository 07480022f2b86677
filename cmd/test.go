// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib/libtesting"
	"github.com/spf13/cobra"
)

// TestCommand returns the test command.
func TestCommand(opts ...Option) *cobra.Command {
	var (
		namespace string
		excludes  []string
	)
	cmd := &cobra.Command{
		Use:   "test [flags] FILE...",
		Short: "Run the tests defined in lisp files",
		Long: `Load lisp files and run the tests they define with test/deftest.

The test module is loaded before the files.  An argument DIR/... loads every
.clv file below DIR.  Each test is reported as it completes and the command
fails if any test fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCmdConfig(opts...)
			s, err := c.settings()
			if err != nil {
				return err
			}
			s.Preload = append(s.Preload, "test")
			units, err := readUnits(args, false, excludes)
			if err != nil {
				return err
			}
			suite := libtesting.NewTestSuite()
			configs := append([]lisp.Config{libtesting.WithSuite(suite)}, c.configs...)
			out := cmd.OutOrStdout()
			env, err := s.newEnv(s.RunMode, out, cmd.ErrOrStderr(), configs...)
			if err != nil {
				return err
			}
			var failed int
			err = withProfile(cmd.Context(), s, env, func() error {
				for _, u := range units {
					if v := env.EvalString(u.src, u.name); v.Type == lisp.LError {
						return lisp.GoError(v)
					}
				}
				prefix := ""
				if namespace != "" {
					prefix = namespace + "/"
				}
				for _, r := range suite.RunAll(env, prefix, out) {
					if !r.Passed() {
						failed++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				fmt.Fprintf(out, "FAIL (%d failed)\n", failed) //nolint:errcheck // best-effort output
				return &errSilent{code: 1}
			}
			fmt.Fprintln(out, "ok") //nolint:errcheck // best-effort output
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "",
		"Only run the tests of one namespace")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil,
		"Skip files matching a pattern when expanding DIR/...")
	return cmd
}
