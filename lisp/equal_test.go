// Copyright © 2018 The ELPS authors

package lisp

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b  *LVal
		equal bool
	}{
		{Int(1), Int(1), true},
		{Int(1), Double(1), false},
		{Int(1), BigInt(big.NewInt(1)), false},
		{Decimal(decimal.RequireFromString("1.50")), Decimal(decimal.RequireFromString("1.5")), true},
		{String("a"), String("a"), true},
		{String("a"), Symbol("a"), false},
		{Keyword("a/b"), Keyword("a/b"), true},
		{Keyword("a/b"), Keyword("b"), false},
		{List(Int(1), Int(2)), Vector(Int(1), Int(2)), true},
		{List(Int(1)), List(Int(1), Int(2)), false},
		{MapOf(SortedKind, Keyword("a"), Int(1)), HashMap(Keyword("a"), Int(1)), true},
		{MapOf(OrderedKind, Keyword("a"), Int(1)), HashMap(Keyword("a"), Int(2)), false},
		{SetOf(SortedKind, Int(1), Int(2)), HashSet(Int(2), Int(1)), true},
		{Nil(), Nil(), true},
		{Nil(), List(), false},
	}
	for i, test := range tests {
		assert.Equal(t, test.equal, test.a.Equal(test.b), "test %d: %v = %v", i, test.a, test.b)
		if test.equal {
			assert.Equal(t, test.a.Hash(), test.b.Hash(), "test %d: hash %v", i, test.a)
		}
	}
}

func TestEqualNum(t *testing.T) {
	ok, err := Int(1).EqualNum(Double(1))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = BigInt(big.NewInt(2)).EqualNum(Decimal(decimal.NewFromInt(2)))
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = Int(1).EqualNum(String("1"))
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	ordered := []*LVal{
		Nil(),
		Bool(false),
		Bool(true),
		Int(-1),
		Double(0.5),
		Int(1),
		Double(1),
		Char('a'),
		String("a"),
		String("b"),
		Keyword("a"),
		Keyword("ns/a"),
		Symbol("a"),
		Vector(Int(1)),
		List(Int(1), Int(0)),
	}
	for i := range ordered {
		assert.Equal(t, 0, CompareValues(ordered[i], ordered[i]), "%v", ordered[i])
		for j := i + 1; j < len(ordered); j++ {
			assert.Equal(t, -1, CompareValues(ordered[i], ordered[j]), "%v < %v", ordered[i], ordered[j])
			assert.Equal(t, 1, CompareValues(ordered[j], ordered[i]), "%v > %v", ordered[j], ordered[i])
		}
	}
}
