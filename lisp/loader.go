// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals should be executed as if inside a do.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// ModuleLoader supplies the source text of named modules.
type ModuleLoader interface {
	LoadModule(name string) (string, error)
}

// ModuleLoaderFunc is a function implementing ModuleLoader.
type ModuleLoaderFunc func(name string) (string, error)

// LoadModule calls fn(name).
func (fn ModuleLoaderFunc) LoadModule(name string) (string, error) {
	return fn(name)
}

// MapLoader is a ModuleLoader serving module sources held in memory.
type MapLoader map[string]string

// LoadModule implements ModuleLoader.
func (m MapLoader) LoadModule(name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", fmt.Errorf("module not found: %s", name)
	}
	return src, nil
}

// ChainLoader returns a ModuleLoader which tries each loader in turn and
// returns the first module found.
func ChainLoader(loaders ...ModuleLoader) ModuleLoader {
	return ModuleLoaderFunc(func(name string) (string, error) {
		var err error
		for _, l := range loaders {
			var src string
			src, err = l.LoadModule(name)
			if err == nil {
				return src, nil
			}
		}
		if err == nil {
			err = fmt.Errorf("module not found: %s", name)
		}
		return "", err
	})
}

// moduleSet records the modules and source units which have been loaded into
// a runtime.
type moduleSet struct {
	mu  sync.Mutex
	set map[string]bool
}

func (s *moduleSet) add(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		s.set = make(map[string]bool)
	}
	if s.set[name] {
		return false
	}
	s.set[name] = true
	return true
}

func (s *moduleSet) names() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.set))
	for name := range s.set {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)
	return names
}

func (s *moduleSet) remove(name string) {
	s.mu.Lock()
	delete(s.set, name)
	s.mu.Unlock()
}
