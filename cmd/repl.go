// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/repl"
	"github.com/spf13/cobra"
)

// ReplCommand returns the repl command.
func ReplCommand(opts ...Option) *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive REPL",
		Long: `Start an interactive read-eval-print loop.

Input lines are collected until they hold whole forms.  The prompt names
the current namespace.  Tab completes names visible from the current
namespace and ns/ qualified names.  Use Ctrl-D to exit.

Example REPL session:
  user=> (+ 1 2)
  3
  user=> (defn square [x] (* x x))
  user/square
  user=> (square 5)
  25
  user=> (doc map)
  ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCmdConfig(opts...)
			s, err := c.settings()
			if err != nil {
				return err
			}
			mode, err := parseColorMode(colorFlag)
			if err != nil {
				return err
			}
			// A session has no time budget.
			s.MaxExecTime = 0
			env, err := s.newEnv(lisp.RunModeREPL, os.Stdout, os.Stderr, c.configs...)
			if err != nil {
				return err
			}
			replOpts := []repl.Option{repl.WithColor(mode)}
			if cmd.Flags().Changed("history") {
				replOpts = append(replOpts, repl.WithHistoryFile(history))
			}
			return withProfile(cmd.Context(), s, env, func() error {
				return repl.RunEnv(env, replOpts...)
			})
		},
	}
	cmd.Flags().StringVar(&history, "history", "",
		"History file (default is $HOME/"+repl.HistoryFileName+"; empty disables history)")
	return cmd
}
