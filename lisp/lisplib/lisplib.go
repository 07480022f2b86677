// Copyright © 2018 The ELPS authors

// Package lisplib serves the modules embedded with the interpreter and
// creates environments which load them.
package lisplib

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/lisp/lisplib/libtesting"
	"github.com/luthersystems/clove/parser"
)

// ModuleExt is the file extension of module source files.
const ModuleExt = ".clv"

//go:embed modules/*.clv
var modules embed.FS

// Modules returns the names of the embedded modules.
func Modules() []string {
	entries, err := fs.ReadDir(modules, "modules")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(ModuleExt)])
	}
	return names
}

// EmbeddedLoader returns a ModuleLoader serving the embedded modules.
func EmbeddedLoader() lisp.ModuleLoader {
	return lisp.ModuleLoaderFunc(func(name string) (string, error) {
		b, err := modules.ReadFile("modules/" + name + ModuleExt)
		if err != nil {
			return "", fmt.Errorf("module not found: %s", name)
		}
		return string(b), nil
	})
}

// DirLoader returns a ModuleLoader reading name.clv from the first directory
// in dirs containing it.
func DirLoader(dirs ...string) lisp.ModuleLoader {
	return lisp.ModuleLoaderFunc(func(name string) (string, error) {
		for _, dir := range dirs {
			b, err := os.ReadFile(filepath.Join(dir, name+ModuleExt)) //#nosec G304
			if err == nil {
				return string(b), nil
			}
			if !os.IsNotExist(err) {
				return "", err
			}
		}
		return "", fmt.Errorf("module not found: %s", name)
	})
}

// Loader returns a ModuleLoader serving the embedded modules followed by the
// modules of extra.
func Loader(extra ...lisp.ModuleLoader) lisp.ModuleLoader {
	return lisp.ChainLoader(append([]lisp.ModuleLoader{EmbeddedLoader()}, extra...)...)
}

// CreateEnvironment returns a new environment using the default reader and
// serving the embedded modules along with any directories of the load path.
// A fresh test suite collects the tests defined in the environment unless
// configs supply one with libtesting.WithSuite.
func CreateEnvironment(preload []string, macroexpandOnLoad bool, mode lisp.RunMode, configs ...lisp.Config) (*lisp.LEnv, error) {
	base := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		libtesting.WithSuite(libtesting.NewTestSuite()),
	}
	configs = append(base, configs...)
	configs = append(configs, withLoadPathLoader)
	return lisp.CreateEnvironment(preload, macroexpandOnLoad, mode, configs...)
}

// withLoadPathLoader chains the runtime's configured loader and the load path
// behind the embedded modules.
func withLoadPathLoader(env *lisp.LEnv) *lisp.LVal {
	rt := env.Runtime
	var extra []lisp.ModuleLoader
	if rt.Loader != nil {
		extra = append(extra, rt.Loader)
	}
	if len(rt.LoadPath) > 0 {
		extra = append(extra, DirLoader(rt.LoadPath...))
	}
	rt.Loader = Loader(extra...)
	return lisp.Nil()
}
