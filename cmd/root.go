// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clove",
	Short: "clove is an embeddable Clojure-style Lisp",
	Long: `clove is a Clojure-style Lisp interpreter for embedding in Go programs.
The CLI runs programs, starts a REPL and runs tests written with the test
module.

Getting started:
  clove run file.clv           Run a source file
  clove run -e '(+ 1 2)' -p    Evaluate an expression and print the result
  clove repl                   Start an interactive REPL
  clove test ./tests/...       Run the deftest forms of every file in a tree
  clove doc map                Show documentation for a function

Settings are read from $HOME/.clove.yaml (or --config) and may be
overridden by flags or by environment variables such as
CLOVE_MAX_EXEC_TIME=5s.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var silent *errSilent
		if errors.As(err, &silent) {
			os.Exit(silent.code)
		}
		renderError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clove.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	addEnvFlags(rootCmd.PersistentFlags(), viper.GetViper())
	setDefaults(viper.GetViper())

	rootCmd.AddCommand(RunCommand(), ReplCommand(), TestCommand(), DocCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".clove")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
	}
}
