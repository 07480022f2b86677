// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/luthersystems/clove/lisp"
	"github.com/spf13/cobra"
)

// DocCommand returns the doc command.
func DocCommand(opts ...Option) *cobra.Command {
	var (
		sourceFile string
		listNs     string
	)
	cmd := &cobra.Command{
		Use:   "doc [flags] QUERY",
		Short: "Show documentation for functions, macros and special forms",
		Long: `Show the documentation of a var or special form.

Use -f to load a source file first (useful for documenting your own code)
and -n to list the names defined in a namespace.

Examples:
  clove doc map                     Show docs for the map function
  clove doc let                     Show docs for the let special form
  clove doc -f mylib.clv my/func    Load a file, then show docs for my/func
  clove doc -n core                 List the names of the core namespace`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listNs != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCmdConfig(opts...)
			s, err := c.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			env, err := s.newEnv(s.RunMode, out, cmd.ErrOrStderr(), c.configs...)
			if err != nil {
				return err
			}
			if sourceFile != "" {
				b, err := os.ReadFile(sourceFile) //#nosec G304
				if err != nil {
					return err
				}
				if v := env.EvalString(string(b), sourceFile); v.Type == lisp.LError {
					return lisp.GoError(v)
				}
			}
			if listNs != "" {
				ns := env.Runtime.Registry.Get(listNs)
				if ns == nil {
					return fmt.Errorf("unknown namespace: %s", listNs)
				}
				_, err := fmt.Fprintln(out, strings.Join(ns.Names(), "\n"))
				return err
			}
			v := env.EvalString("(doc "+args[0]+")", "doc")
			return lisp.GoError(v)
		},
	}
	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Evaluate a lisp source file before querying documentation.")
	cmd.Flags().StringVarP(&listNs, "namespace", "n", "",
		"List the names defined in a namespace.")
	return cmd
}
