package index

import (
	"cmp"
	"iter"
	"strings"
)

// Multi maps secondary keys to ordered sets of primary keys.
// Distinct primary keys may share a secondary key, a (secondary, primary) pair is unique.
type Multi[K cmp.Ordered, P cmp.Ordered] struct {
	keys  *Tree[K, *Tree[P, struct{}]]
	pairs int
}

// NewMulti creates an empty secondary index.
func NewMulti[K cmp.Ordered, P cmp.Ordered]() *Multi[K, P] {
	return &Multi[K, P]{keys: New[K, *Tree[P, struct{}]]()}
}

// Len returns the number of (secondary, primary) pairs.
func (m *Multi[K, P]) Len() int {
	return m.pairs
}

// Add links primary to key. It fails with ErrDuplicateKey if the pair already exists.
func (m *Multi[K, P]) Add(key K, primary P) error {
	set, ok := m.keys.Find(key)
	if !ok {
		set = New[P, struct{}]()
		_ = m.keys.Insert(key, set)
	}

	if err := set.Insert(primary, struct{}{}); err != nil {
		return err
	}

	m.pairs++

	return nil
}

// Remove unlinks primary from key. It fails with ErrKeyNotFound if the pair is absent.
// Secondary keys without primaries are dropped.
func (m *Multi[K, P]) Remove(key K, primary P) error {
	set, ok := m.keys.Find(key)
	if !ok {
		return ErrKeyNotFound
	}

	if err := set.Remove(primary); err != nil {
		return err
	}

	if set.Len() == 0 {
		_ = m.keys.Remove(key)
	}

	m.pairs--

	return nil
}

// Contains reports whether the pair exists.
func (m *Multi[K, P]) Contains(key K, primary P) bool {
	set, ok := m.keys.Find(key)

	return ok && set.Contains(primary)
}

// Get returns the primary keys linked to key in ascending order.
func (m *Multi[K, P]) Get(key K) []P {
	set, ok := m.keys.Find(key)
	if !ok {
		return nil
	}

	return set.Keys()
}

// Range returns a lazy sequence of (secondary, primary) pairs with secondary keys between from and to,
// ordered by secondary key, then by primary key.
func (m *Multi[K, P]) Range(from, to Bound[K]) iter.Seq2[K, P] {
	return func(yield func(K, P) bool) {
		for key, set := range m.keys.Range(from, to) {
			for primary := range set.All() {
				if !yield(key, primary) {
					return
				}
			}
		}
	}
}

// All returns a lazy sequence of all pairs in (secondary, primary) order.
func (m *Multi[K, P]) All() iter.Seq2[K, P] {
	return m.Range(Unbounded[K](), Unbounded[K]())
}

// MultiPrefix returns a lazy sequence of pairs whose secondary key starts with prefix.
func MultiPrefix[P cmp.Ordered](m *Multi[string, P], prefix string) iter.Seq2[string, P] {
	return func(yield func(string, P) bool) {
		for key, set := range Prefix(m.keys, prefix) {
			for primary := range set.All() {
				if !yield(key, primary) {
					return
				}
			}
		}
	}
}

// MultiContains returns a lazy sequence of pairs whose secondary key contains needle.
// This is a full scan.
func MultiContains[P cmp.Ordered](m *Multi[string, P], needle string) iter.Seq2[string, P] {
	return func(yield func(string, P) bool) {
		for key, primary := range m.All() {
			if !strings.Contains(key, needle) {
				continue
			}

			if !yield(key, primary) {
				return
			}
		}
	}
}
