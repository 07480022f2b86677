// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"
	"testing"

	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	r := NewReader()
	exprs, err := r.Read("test", strings.NewReader("(+ 1 2)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.Equal(t, lisp.LList, exprs[0].Type)
	assert.Equal(t, "test", exprs[0].Source.File)
}

func TestNewReader_Long(t *testing.T) {
	exprs, err := NewReader().Read("test", strings.NewReader("42"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.Equal(t, lisp.LLong, exprs[0].Type)
	assert.Equal(t, int64(42), exprs[0].Int)
}

func TestNewReader_ParseError(t *testing.T) {
	_, err := NewReader().Read("test", strings.NewReader("(unclosed"))
	require.Error(t, err)
	lerr := lisp.ParseError(err)
	assert.Equal(t, lisp.CondUnexpectedEOF, lerr.Str)
	assert.Equal(t, "test", lerr.Source.File)
}

func TestComplete(t *testing.T) {
	assert.True(t, Complete("(+ 1 2)"))
	assert.False(t, Complete("(+ 1"))
}

func TestRead(t *testing.T) {
	form, err := Read("(a b) (c)", "unit")
	require.NoError(t, err)
	assert.Equal(t, "(a b)", form.String())
	assert.Equal(t, "unit", form.Source.File)

	_, err = Read("  ; only a comment\n", "unit")
	require.Error(t, err)
	assert.Equal(t, lisp.CondUnexpectedEOF, lisp.ParseError(err).Str)
}

func TestReadAll(t *testing.T) {
	forms, err := ReadAll("1 :k \"s\"", "unit")
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, lisp.LKeyword, forms[1].Type)
}
