// Copyright © 2018 The ELPS authors

package lisp

import (
	"github.com/benbjohnson/immutable"
)

// listCell is a node of a persistent singly linked list.  Cells are never
// modified once linked so tails are shared freely between lists.
type listCell struct {
	head  *LVal
	tail  *listCell
	count int
}

// List returns a persistent list containing cells.
func List(cells ...*LVal) *LVal {
	var c *listCell
	for i := len(cells) - 1; i >= 0; i-- {
		c = &listCell{head: cells[i], tail: c, count: len(cells) - i}
	}
	return listFromCell(c)
}

// EmptyList returns the shared empty list.
func EmptyList() *LVal {
	return singletonEmpty
}

func listFromCell(c *listCell) *LVal {
	if c == nil {
		return &LVal{Source: nativeSource(), Type: LList}
	}
	return &LVal{
		Source: nativeSource(),
		Type:   LList,
		Native: c,
	}
}

func (v *LVal) listCell() *listCell {
	c, _ := v.Native.(*listCell)
	return c
}

// Cons returns a list with head prepended to the sequence tail.  Prepending to
// a list shares the original list structure.
func Cons(head, tail *LVal) *LVal {
	var c *listCell
	switch tail.Type {
	case LList:
		c = tail.listCell()
	case LNil:
	default:
		return Cons(head, List(tail.Items()...))
	}
	n := 1
	if c != nil {
		n = c.count + 1
	}
	return listFromCell(&listCell{head: head, tail: c, count: n})
}

// VectorData returns the persistent list backing an LVector.
func (v *LVal) VectorData() *immutable.List[*LVal] {
	l, _ := v.Native.(*immutable.List[*LVal])
	if l == nil {
		return immutable.NewList[*LVal]()
	}
	return l
}

// Len returns the number of elements in a collection or string.
func (v *LVal) Len() int {
	switch v.Type {
	case LList:
		if c := v.listCell(); c != nil {
			return c.count
		}
		return 0
	case LVector:
		return v.VectorData().Len()
	case LMap:
		return v.MapData().Len()
	case LSet:
		return v.SetData().Len()
	case LString:
		return len([]rune(v.Str))
	}
	return 0
}

// IsEmpty returns true if v is nil or a collection without elements.
func (v *LVal) IsEmpty() bool {
	if v.Type == LNil {
		return true
	}
	if v.Type == LList {
		return v.listCell() == nil
	}
	return v.Len() == 0
}

// First returns the first element of a sequence, or nil.
func (v *LVal) First() *LVal {
	switch v.Type {
	case LList:
		if c := v.listCell(); c != nil {
			return c.head
		}
		return Nil()
	case LVector:
		l := v.VectorData()
		if l.Len() == 0 {
			return Nil()
		}
		return l.Get(0)
	}
	items := v.Items()
	if len(items) == 0 {
		return Nil()
	}
	return items[0]
}

// Rest returns a list of all elements after the first.
func (v *LVal) Rest() *LVal {
	switch v.Type {
	case LList:
		if c := v.listCell(); c != nil {
			return listFromCell(c.tail)
		}
		return EmptyList()
	case LVector:
		l := v.VectorData()
		if l.Len() <= 1 {
			return EmptyList()
		}
		return List(sliceOf(l.Slice(1, l.Len()))...)
	}
	items := v.Items()
	if len(items) <= 1 {
		return EmptyList()
	}
	return List(items[1:]...)
}

// Nth returns the element at index i of a sequence.
func (v *LVal) Nth(i int) (*LVal, bool) {
	if i < 0 {
		return nil, false
	}
	switch v.Type {
	case LList:
		for c := v.listCell(); c != nil; c = c.tail {
			if i == 0 {
				return c.head, true
			}
			i--
		}
		return nil, false
	case LVector:
		l := v.VectorData()
		if i >= l.Len() {
			return nil, false
		}
		return l.Get(i), true
	case LString:
		rs := []rune(v.Str)
		if i >= len(rs) {
			return nil, false
		}
		return Char(rs[i]), true
	}
	return nil, false
}

// Items returns the elements of v as a slice.  Maps produce [key value]
// vectors; strings produce characters; nil produces no elements.  The
// returned slice is freshly allocated.
func (v *LVal) Items() []*LVal {
	switch v.Type {
	case LList:
		c := v.listCell()
		if c == nil {
			return nil
		}
		items := make([]*LVal, 0, c.count)
		for ; c != nil; c = c.tail {
			items = append(items, c.head)
		}
		return items
	case LVector:
		return sliceOf(v.VectorData())
	case LSet:
		return v.SetData().Items()
	case LMap:
		entries := v.MapData().Entries()
		items := make([]*LVal, len(entries))
		for i, e := range entries {
			items[i] = Vector(e.Key, e.Val)
		}
		return items
	case LString:
		rs := []rune(v.Str)
		items := make([]*LVal, len(rs))
		for i, c := range rs {
			items[i] = Char(c)
		}
		return items
	}
	return nil
}

func sliceOf(l *immutable.List[*LVal]) []*LVal {
	items := make([]*LVal, 0, l.Len())
	itr := l.Iterator()
	for !itr.Done() {
		_, x := itr.Next()
		items = append(items, x)
	}
	return items
}

// Conj adds x to coll in the position natural for the collection type.  Lists
// grow at the front, vectors at the end, sets by membership and maps by a
// [key value] entry.
func Conj(coll, x *LVal) *LVal {
	switch coll.Type {
	case LNil:
		return List(x)
	case LList:
		return Cons(x, coll)
	case LVector:
		return vectorFromList(coll.VectorData().Append(x))
	case LSet:
		return setFromData(coll.SetData().Add(x))
	case LMap:
		if !x.IsSeq() || x.Len() != 2 {
			return Errorf("map entry must be a two element vector: %v", x)
		}
		k, _ := x.Nth(0)
		val, _ := x.Nth(1)
		return mapFromData(coll.MapData().Assoc(k, val))
	}
	return ErrorConditionf(CondTypeError, "cannot conj onto %v", coll.Type)
}
