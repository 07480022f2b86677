// Copyright © 2018 The ELPS authors

package repl

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completions(c *symbolCompleter, line string) ([]string, int) {
	runes := []rune(line)
	candidates, offset := c.Do(runes, len(runes))
	words := make([]string, len(candidates))
	for i, cand := range candidates {
		words[i] = string(cand)
	}
	return words, offset
}

func TestSymbolCompleter(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	v := env.EvalString(`(defn my-helper [] 1) (def my-value 2) (defn- my-secret [] 3)`, "test")
	require.NotEqual(t, lisp.LError, v.Type, v.String())
	c := &symbolCompleter{env: env}

	words, offset := completions(c, "(my-")
	assert.Equal(t, 3, offset)
	assert.Equal(t, []string{"helper", "secret", "value"}, words)

	words, offset = completions(c, "(de")
	assert.Equal(t, 2, offset)
	assert.Contains(t, words, "fn")
	assert.Contains(t, words, "fmacro")

	words, _ = completions(c, "[co")
	assert.Contains(t, words, "re/")

	words, offset = completions(c, "(core/ma")
	assert.Equal(t, 7, offset)
	assert.Contains(t, words, "p")

	words, _ = completions(c, "(user/my-")
	assert.Equal(t, []string{"helper", "value"}, words)

	words, _ = completions(c, "(zzz-nonexistent")
	assert.Empty(t, words)

	words, _ = completions(c, "(nope/x")
	assert.Empty(t, words)

	words, offset = completions(c, "(")
	assert.Empty(t, words)
	assert.Equal(t, 0, offset)
}
