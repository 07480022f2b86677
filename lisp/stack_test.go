// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/luthersystems/clove/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStack(t *testing.T) {
	s := &CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())
	require.NoError(t, s.Push(nil, "user/f", "user"))
	loc := &token.Location{File: "test.clv", Line: 3, Col: 1, Pos: 10}
	require.NoError(t, s.Push(loc, "core/+", "core"))
	assert.Equal(t, 2, s.Height())
	assert.Equal(t, "core/+", s.Top().Name)

	err := s.Push(nil, "user/g", "user")
	var overflow *StackOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 3, overflow.Height)

	cp := s.Copy()
	f := s.Pop()
	assert.Equal(t, "core/+", f.Name)
	assert.Equal(t, 1, s.Height())
	assert.Equal(t, 2, cp.Height())

	var buf bytes.Buffer
	_, err = cp.DebugPrint(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Stack Trace [2 frames -- entrypoint last]:")
	assert.Contains(t, buf.String(), "height 1: test.clv:3:1: core/+")
	assert.Contains(t, buf.String(), "height 0: user/f")

	s.Pop()
	assert.Panics(t, func() { s.Pop() })
}
