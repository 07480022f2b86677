// Copyright © 2018 The ELPS authors

package lisp

import (
	"sync"

	"github.com/benbjohnson/immutable"
)

// CollKind selects the backing implementation of a map or set.
type CollKind uint8

const (
	// HashKind collections are persistent hash array mapped tries.
	HashKind CollKind = iota
	// SortedKind collections are persistent sorted trees ordered by
	// CompareValues.
	SortedKind
	// OrderedKind maps iterate in key insertion order.
	OrderedKind
	// MutableKind collections are modified in place.
	MutableKind
)

// MapEntry is a key/value pair of a map.
type MapEntry struct {
	Key *LVal
	Val *LVal
}

// MapData is the storage for an LMap.  All kinds except MutableKind are
// persistent: Assoc and Dissoc return new MapData sharing structure with the
// receiver.
type MapData struct {
	Kind   CollKind
	hash   *immutable.Map[*LVal, *LVal]
	sorted *immutable.SortedMap[*LVal, *LVal]
	order  *immutable.List[*LVal]
	mu     *sync.RWMutex
}

// NewMapData returns an empty map of the given kind.
func NewMapData(kind CollKind) *MapData {
	m := &MapData{Kind: kind}
	switch kind {
	case SortedKind:
		m.sorted = immutable.NewSortedMap[*LVal, *LVal](valueComparer{})
	case OrderedKind:
		m.hash = immutable.NewMap[*LVal, *LVal](valueHasher{})
		m.order = immutable.NewList[*LVal]()
	case MutableKind:
		m.hash = immutable.NewMap[*LVal, *LVal](valueHasher{})
		m.mu = &sync.RWMutex{}
	default:
		m.hash = immutable.NewMap[*LVal, *LVal](valueHasher{})
	}
	return m
}

func mapFromData(m *MapData) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LMap,
		Native: m,
	}
}

// MapOf returns a map of the given kind holding alternating keys and values.
// Later keys replace earlier ones.
func MapOf(kind CollKind, kvs ...*LVal) *LVal {
	m := NewMapData(kind)
	for i := 0; i+1 < len(kvs); i += 2 {
		m = m.Assoc(kvs[i], kvs[i+1])
	}
	return mapFromData(m)
}

// MapLiteral returns a hash map read from source.  The map holds the
// unevaluated forms in cells, which alternate between keys and values, and
// keeps cells so that evaluation can detect duplicate keys.
func MapLiteral(cells []*LVal) *LVal {
	m := MapOf(HashKind, cells...)
	m.Cells = cells
	return m
}

// HashMap returns a persistent hash map holding alternating keys and values.
func HashMap(kvs ...*LVal) *LVal {
	return MapOf(HashKind, kvs...)
}

// MapData returns the storage of an LMap.
func (v *LVal) MapData() *MapData {
	m, _ := v.Native.(*MapData)
	if m == nil {
		return NewMapData(HashKind)
	}
	return m
}

func (m *MapData) rlock() func() {
	if m.mu == nil {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// Len returns the number of entries in m.
func (m *MapData) Len() int {
	defer m.rlock()()
	if m.Kind == SortedKind {
		return m.sorted.Len()
	}
	return m.hash.Len()
}

// Get returns the value associated with key.
func (m *MapData) Get(key *LVal) (*LVal, bool) {
	defer m.rlock()()
	if m.Kind == SortedKind {
		return m.sorted.Get(key)
	}
	return m.hash.Get(key)
}

// Assoc returns a map with key associated to val.  A mutable map is modified
// in place and returned.
func (m *MapData) Assoc(key, val *LVal) *MapData {
	switch m.Kind {
	case MutableKind:
		m.mu.Lock()
		m.hash = m.hash.Set(key, val)
		m.mu.Unlock()
		return m
	case SortedKind:
		cp := *m
		cp.sorted = m.sorted.Set(key, val)
		return &cp
	case OrderedKind:
		cp := *m
		if _, ok := m.hash.Get(key); !ok {
			cp.order = m.order.Append(key)
		}
		cp.hash = m.hash.Set(key, val)
		return &cp
	default:
		cp := *m
		cp.hash = m.hash.Set(key, val)
		return &cp
	}
}

// Dissoc returns a map without key.
func (m *MapData) Dissoc(key *LVal) *MapData {
	switch m.Kind {
	case MutableKind:
		m.mu.Lock()
		m.hash = m.hash.Delete(key)
		m.mu.Unlock()
		return m
	case SortedKind:
		cp := *m
		cp.sorted = m.sorted.Delete(key)
		return &cp
	case OrderedKind:
		if _, ok := m.hash.Get(key); !ok {
			return m
		}
		cp := *m
		cp.hash = m.hash.Delete(key)
		order := immutable.NewList[*LVal]()
		itr := m.order.Iterator()
		for !itr.Done() {
			_, k := itr.Next()
			if !k.Equal(key) {
				order = order.Append(k)
			}
		}
		cp.order = order
		return &cp
	default:
		cp := *m
		cp.hash = m.hash.Delete(key)
		return &cp
	}
}

// Entries returns the entries of m in iteration order.
func (m *MapData) Entries() []MapEntry {
	defer m.rlock()()
	var entries []MapEntry
	switch m.Kind {
	case SortedKind:
		itr := m.sorted.Iterator()
		for !itr.Done() {
			k, v, _ := itr.Next()
			entries = append(entries, MapEntry{k, v})
		}
	case OrderedKind:
		itr := m.order.Iterator()
		for !itr.Done() {
			_, k := itr.Next()
			v, _ := m.hash.Get(k)
			entries = append(entries, MapEntry{k, v})
		}
	default:
		itr := m.hash.Iterator()
		for !itr.Done() {
			k, v, _ := itr.Next()
			entries = append(entries, MapEntry{k, v})
		}
	}
	return entries
}

// Keys returns the keys of m in iteration order.
func (m *MapData) Keys() []*LVal {
	entries := m.Entries()
	keys := make([]*LVal, len(entries))
	for i := range entries {
		keys[i] = entries[i].Key
	}
	return keys
}

// Empty returns an empty map of the same kind as m.
func (m *MapData) Empty() *MapData {
	return NewMapData(m.Kind)
}

// SetData is the storage for an LSet.
type SetData struct {
	Kind   CollKind
	hash   *immutable.Map[*LVal, struct{}]
	sorted *immutable.SortedMap[*LVal, struct{}]
	mu     *sync.RWMutex
}

// NewSetData returns an empty set of the given kind.  OrderedKind is not
// supported for sets and produces a hash set.
func NewSetData(kind CollKind) *SetData {
	s := &SetData{Kind: kind}
	switch kind {
	case SortedKind:
		s.sorted = immutable.NewSortedMap[*LVal, struct{}](valueComparer{})
	case MutableKind:
		s.hash = immutable.NewMap[*LVal, struct{}](valueHasher{})
		s.mu = &sync.RWMutex{}
	default:
		s.Kind = HashKind
		s.hash = immutable.NewMap[*LVal, struct{}](valueHasher{})
	}
	return s
}

func setFromData(s *SetData) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LSet,
		Native: s,
	}
}

// SetOf returns a set of the given kind containing items.
func SetOf(kind CollKind, items ...*LVal) *LVal {
	s := NewSetData(kind)
	for _, x := range items {
		s = s.Add(x)
	}
	return setFromData(s)
}

// SetLiteral returns a hash set read from source holding the unevaluated
// forms in cells.
func SetLiteral(cells []*LVal) *LVal {
	s := SetOf(HashKind, cells...)
	s.Cells = cells
	return s
}

// HashSet returns a persistent hash set containing items.
func HashSet(items ...*LVal) *LVal {
	return SetOf(HashKind, items...)
}

// SetData returns the storage of an LSet.
func (v *LVal) SetData() *SetData {
	s, _ := v.Native.(*SetData)
	if s == nil {
		return NewSetData(HashKind)
	}
	return s
}

func (s *SetData) rlock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// Len returns the number of members of s.
func (s *SetData) Len() int {
	defer s.rlock()()
	if s.Kind == SortedKind {
		return s.sorted.Len()
	}
	return s.hash.Len()
}

// Contains returns true if x is a member of s.
func (s *SetData) Contains(x *LVal) bool {
	defer s.rlock()()
	var ok bool
	if s.Kind == SortedKind {
		_, ok = s.sorted.Get(x)
	} else {
		_, ok = s.hash.Get(x)
	}
	return ok
}

// Add returns a set containing x.  A mutable set is modified in place.
func (s *SetData) Add(x *LVal) *SetData {
	switch s.Kind {
	case MutableKind:
		s.mu.Lock()
		s.hash = s.hash.Set(x, struct{}{})
		s.mu.Unlock()
		return s
	case SortedKind:
		cp := *s
		cp.sorted = s.sorted.Set(x, struct{}{})
		return &cp
	default:
		cp := *s
		cp.hash = s.hash.Set(x, struct{}{})
		return &cp
	}
}

// Remove returns a set without x.
func (s *SetData) Remove(x *LVal) *SetData {
	switch s.Kind {
	case MutableKind:
		s.mu.Lock()
		s.hash = s.hash.Delete(x)
		s.mu.Unlock()
		return s
	case SortedKind:
		cp := *s
		cp.sorted = s.sorted.Delete(x)
		return &cp
	default:
		cp := *s
		cp.hash = s.hash.Delete(x)
		return &cp
	}
}

// Items returns the members of s in iteration order.
func (s *SetData) Items() []*LVal {
	defer s.rlock()()
	var items []*LVal
	if s.Kind == SortedKind {
		itr := s.sorted.Iterator()
		for !itr.Done() {
			k, _, _ := itr.Next()
			items = append(items, k)
		}
		return items
	}
	itr := s.hash.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		items = append(items, k)
	}
	return items
}

// Empty returns an empty set of the same kind as s.
func (s *SetData) Empty() *SetData {
	return NewSetData(s.Kind)
}
