// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/luthersystems/clove/lisp"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (RunCommand, ReplCommand,
// TestCommand, DocCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	viper   *viper.Viper
	configs []lisp.Config
}

func newCmdConfig(opts ...Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.viper == nil {
		c.viper = viper.GetViper()
	}
	return c
}

// WithEnvConfig applies configs to every environment the command creates.
// Embedders use it to install their own builtins with lisp.WithBuiltins.
func WithEnvConfig(configs ...lisp.Config) Option {
	return func(c *cmdConfig) { c.configs = append(c.configs, configs...) }
}

// WithViper reads settings from v instead of the global viper instance.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.viper = v }
}

func (c *cmdConfig) settings() (*settings, error) {
	setDefaults(c.viper)
	return loadSettings(c.viper)
}
