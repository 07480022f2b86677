// Copyright © 2018 The ELPS authors

package clovetest

import (
	"testing"

	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/assert"
)

// AssertSortedMap runs tests to ensure that m satisfies constraints required
// for sorted maps.  The following properties are tested by AssertSortedMap:
//
//		Repeated calls to m.Entries() and m.Keys() return equal lists with
//		m.Len() elements.
//
//		The lists returned by m.Keys() and m.Entries() have consistent elements
//		and order.
//
//		Keys are in ascending order according to lisp.CompareValues.
//
//		Calling m.Get() with a key from m.Entries() returns a value consistent
//		with that entry.
func AssertSortedMap(t *testing.T, m *lisp.MapData) bool {
	t.Helper()
	if !assert.Equal(t, lisp.SortedKind, m.Kind) {
		return false
	}
	if !assert.NotEqual(t, 0, m.Len(), "Cannot test an empty sorted-map") {
		return false
	}
	entries, keys := m.Entries(), m.Keys()
	if !assert.Len(t, entries, m.Len()) || !assert.Len(t, keys, m.Len()) {
		return false
	}
	for i := 0; i < 3; i++ {
		again := m.Entries()
		for j := range entries {
			if !assert.True(t, entries[j].Key.Equal(again[j].Key), "Entries not fixed at index %d", j) {
				return false
			}
		}
	}
	for i, e := range entries {
		if !assert.True(t, e.Key.Equal(keys[i]), "Keys and Entries not consistent at index %d -- expect: %v got: %v", i, e.Key, keys[i]) {
			return false
		}
		if i > 0 && !assert.Negative(t, lisp.CompareValues(entries[i-1].Key, e.Key), "keys out of order at index %d", i) {
			return false
		}
		v, ok := m.Get(e.Key)
		if !assert.True(t, ok, "Entries %d was not found in map: %v", i, e.Key) {
			return false
		}
		if !assert.True(t, v.Equal(e.Val), "Get returned %v for %v (expected %v)", v, e.Key, e.Val) {
			return false
		}
	}
	return true
}
