// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/clove/lisp"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the vars
// visible from the current namespace.
type symbolCompleter struct {
	env *lisp.LEnv
}

func isDelimiter(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '(', '[', '{', '\'', '`', '@', '~', '^':
		return true
	}
	return false
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && !isDelimiter(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}
	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		result = append(result, []rune(sym[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	reg := c.env.Runtime.Registry
	if i := strings.Index(prefix, "/"); i > 0 {
		ns := reg.Get(prefix[:i])
		if ns == nil {
			return nil
		}
		for _, name := range ns.Names() {
			if v, ok := ns.Lookup(name); ok && v.Private {
				continue
			}
			add(ns.Name + "/" + name)
		}
		sort.Strings(result)
		return result
	}

	for _, name := range lisp.SpecialForms() {
		add(name)
	}
	current := c.env.Thread.Ns
	for _, name := range current.Names() {
		add(name)
	}
	if core := reg.Get(lisp.CoreNamespace); core != nil && core != current {
		for _, name := range core.Names() {
			add(name)
		}
	}
	for _, name := range reg.Names() {
		add(name + "/")
	}
	sort.Strings(result)
	return result
}
