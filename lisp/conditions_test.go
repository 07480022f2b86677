// Copyright © 2024 The ELPS authors

package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditions(t *testing.T) {
	c := NewConditions()
	assert.True(t, c.IsA(CondNotApplicable, CondTypeError))
	assert.True(t, c.IsA(CondNotApplicable, CondError))
	assert.True(t, c.IsA(CondUnexpectedEOF, CondParseError))
	assert.False(t, c.IsA(CondTypeError, CondNotApplicable))
	assert.True(t, c.IsA("unregistered", CondError))
	assert.False(t, c.IsA("unregistered", CondTypeError))
	assert.Equal(t, CondTypeError, c.Parent(CondNotApplicable))
	assert.Equal(t, CondError, c.Parent("unregistered"))
	assert.Equal(t, "", c.Parent(CondError))

	require.NoError(t, c.Derive("app-error", CondError))
	require.NoError(t, c.Derive("db-error", "app-error"))
	assert.True(t, c.IsA("db-error", "app-error"))
	assert.False(t, c.IsA("app-error", "db-error"))

	assert.Error(t, c.Derive(CondError, "app-error"))
	assert.Error(t, c.Derive(CondTypeError, "app-error"))
	assert.Error(t, c.Derive("app-error", "db-error"))
	assert.Error(t, c.Derive("x", "no-such-parent"))

	// rederiving a user condition moves it
	require.NoError(t, c.Derive("db-error", CondError))
	assert.False(t, c.IsA("db-error", "app-error"))
}
