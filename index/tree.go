package index

import (
	"cmp"
	"errors"
	"iter"
	"strings"
)

var (
	// ErrDuplicateKey is returned by Insert when the key is already present.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrKeyNotFound is returned by Remove when the key is absent.
	ErrKeyNotFound = errors.New("key not found")
)

// CompareFunc defines a total order over keys: negative if a < b, zero if equal, positive if a > b.
type CompareFunc[K any] func(a, b K) int

// Bound is one end of a range scan. The zero value is unbounded.
type Bound[K any] struct {
	key       K
	inclusive bool
	set       bool
}

// Unbounded returns an open range end.
func Unbounded[K any]() Bound[K] {
	return Bound[K]{}
}

// Including returns a range end that includes key.
func Including[K any](key K) Bound[K] {
	return Bound[K]{key: key, inclusive: true, set: true}
}

// Excluding returns a range end that excludes key.
func Excluding[K any](key K) Bound[K] {
	return Bound[K]{key: key, set: true}
}

type node[K any, V any] struct {
	key    K
	val    V
	left   *node[K, V]
	right  *node[K, V]
	height int
}

// Tree is an AVL-balanced ordered map with unique keys.
type Tree[K any, V any] struct {
	root    *node[K, V]
	size    int
	compare CompareFunc[K]
}

// New creates an empty Tree ordered by the natural order of K.
func New[K cmp.Ordered, V any]() *Tree[K, V] {
	return NewFunc[K, V](cmp.Compare[K])
}

// NewFunc creates an empty Tree ordered by compare.
func NewFunc[K any, V any](compare CompareFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{compare: compare}
}

// Len returns the number of keys.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// Insert adds key with val. It fails with ErrDuplicateKey if the key exists and leaves the tree unchanged.
func (t *Tree[K, V]) Insert(key K, val V) error {
	root, err := t.insert(t.root, key, val)
	if err != nil {
		return err
	}

	t.root = root
	t.size++

	return nil
}

// Upsert adds key with val or replaces the value of an existing key.
func (t *Tree[K, V]) Upsert(key K, val V) {
	if n := t.lookup(key); n != nil {
		n.val = val
		return
	}

	_ = t.Insert(key, val)
}

// Remove deletes key. It fails with ErrKeyNotFound if the key is absent.
func (t *Tree[K, V]) Remove(key K) error {
	if t.lookup(key) == nil {
		return ErrKeyNotFound
	}

	t.root = t.remove(t.root, key)
	t.size--

	return nil
}

// Find returns the value stored under key.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	if n := t.lookup(key); n != nil {
		return n.val, true
	}

	var zero V

	return zero, false
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	return t.lookup(key) != nil
}

// Min returns the smallest key and its value.
func (t *Tree[K, V]) Min() (K, V, bool) {
	n := t.root
	if n == nil {
		var (
			zeroK K
			zeroV V
		)
		return zeroK, zeroV, false
	}

	for n.left != nil {
		n = n.left
	}

	return n.key, n.val, true
}

// Max returns the largest key and its value.
func (t *Tree[K, V]) Max() (K, V, bool) {
	n := t.root
	if n == nil {
		var (
			zeroK K
			zeroV V
		)
		return zeroK, zeroV, false
	}

	for n.right != nil {
		n = n.right
	}

	return n.key, n.val, true
}

// Keys returns all keys in ascending order.
func (t *Tree[K, V]) Keys() []K {
	keys := make([]K, 0, t.size)
	for k := range t.All() {
		keys = append(keys, k)
	}

	return keys
}

// All returns a lazy ascending sequence over all entries.
func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return t.Range(Unbounded[K](), Unbounded[K]())
}

// Range returns a lazy ascending sequence over the entries between from and to.
// Subtrees outside the bounds are never visited.
func (t *Tree[K, V]) Range(from, to Bound[K]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.ascend(t.root, from, to, yield)
	}
}

// Descend returns a lazy descending sequence over all entries.
func (t *Tree[K, V]) Descend() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		descend(t.root, yield)
	}
}

// Prefix returns a lazy ascending sequence over all entries whose key starts with prefix.
func Prefix[V any](t *Tree[string, V], prefix string) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for k, v := range t.Range(Including(prefix), Unbounded[string]()) {
			if !strings.HasPrefix(k, prefix) {
				return
			}

			if !yield(k, v) {
				return
			}
		}
	}
}

func (t *Tree[K, V]) lookup(key K) *node[K, V] {
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}

	return nil
}

func (t *Tree[K, V]) insert(n *node[K, V], key K, val V) (*node[K, V], error) {
	if n == nil {
		return &node[K, V]{key: key, val: val, height: 1}, nil
	}

	var err error

	c := t.compare(key, n.key)
	switch {
	case c < 0:
		n.left, err = t.insert(n.left, key, val)
	case c > 0:
		n.right, err = t.insert(n.right, key, val)
	default:
		return n, ErrDuplicateKey
	}

	if err != nil {
		return n, err
	}

	return rebalance(n), nil
}

func (t *Tree[K, V]) remove(n *node[K, V], key K) *node[K, V] {
	if n == nil {
		return nil
	}

	c := t.compare(key, n.key)
	switch {
	case c < 0:
		n.left = t.remove(n.left, key)
	case c > 0:
		n.right = t.remove(n.right, key)
	default:
		if n.left == nil {
			return n.right
		}

		if n.right == nil {
			return n.left
		}

		successor := n.right
		for successor.left != nil {
			successor = successor.left
		}

		n.key, n.val = successor.key, successor.val
		n.right = t.remove(n.right, successor.key)
	}

	return rebalance(n)
}

// ascend walks in order and returns false once iteration must stop,
// either because the consumer stopped or the upper bound was passed.
func (t *Tree[K, V]) ascend(n *node[K, V], from, to Bound[K], yield func(K, V) bool) bool {
	if n == nil {
		return true
	}

	aboveLower := t.satisfiesLower(n.key, from)
	if aboveLower {
		if !t.ascend(n.left, from, to, yield) {
			return false
		}
	}

	if !t.satisfiesUpper(n.key, to) {
		return false
	}

	if aboveLower {
		if !yield(n.key, n.val) {
			return false
		}
	}

	return t.ascend(n.right, from, to, yield)
}

func (t *Tree[K, V]) satisfiesLower(key K, from Bound[K]) bool {
	if !from.set {
		return true
	}

	c := t.compare(key, from.key)

	return c > 0 || (c == 0 && from.inclusive)
}

func (t *Tree[K, V]) satisfiesUpper(key K, to Bound[K]) bool {
	if !to.set {
		return true
	}

	c := t.compare(key, to.key)

	return c < 0 || (c == 0 && to.inclusive)
}

func descend[K any, V any](n *node[K, V], yield func(K, V) bool) bool {
	if n == nil {
		return true
	}

	return descend(n.right, yield) && yield(n.key, n.val) && descend(n.left, yield)
}

func height[K any, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}

	return n.height
}

func fixHeight[K any, V any](n *node[K, V]) {
	n.height = 1 + max(height(n.left), height(n.right))
}

func balanceFactor[K any, V any](n *node[K, V]) int {
	return height(n.left) - height(n.right)
}

func rotateRight[K any, V any](n *node[K, V]) *node[K, V] {
	pivot := n.left
	n.left = pivot.right
	pivot.right = n
	fixHeight(n)
	fixHeight(pivot)

	return pivot
}

func rotateLeft[K any, V any](n *node[K, V]) *node[K, V] {
	pivot := n.right
	n.right = pivot.left
	pivot.left = n
	fixHeight(n)
	fixHeight(pivot)

	return pivot
}

func rebalance[K any, V any](n *node[K, V]) *node[K, V] {
	fixHeight(n)

	switch bf := balanceFactor(n); {
	case bf > 1:
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)

	case bf < -1:
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}

	return n
}
