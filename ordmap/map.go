// Package ordmap implements an ordered map (AVL tree) whose nodes come from
// an alloc.Allocator declared over the map's key/value pair.
package ordmap

import (
	"cmp"
	"iter"
	"unsafe"

	"github.com/funny-falcon/chunkalloc/alloc"
)

type Pair[K, V any] struct {
	Key   K
	Value V
}

// Node is the unit of storage a Map requests from its allocator.
type Node[K, V any] struct {
	Pair[K, V]
	left   *Node[K, V]
	right  *Node[K, V]
	height int
}

// Finalize forwards to the key's and value's finalizers.
func (n *Node[K, V]) Finalize() {
	alloc.Finalize(&n.Key)
	alloc.Finalize(&n.Value)
}

// Map keeps entries sorted by key.
//
// Deleted nodes are finalized at once but their storage is kept for reuse
// and only handed back to the allocator by Clear, since a chunk allocator
// releases a whole chunk when given its first element.
type Map[K, V any] struct {
	alloc   alloc.Allocator[Node[K, V]]
	compare func(a, b K) int
	root    *Node[K, V]
	free    *Node[K, V]
	len     int
}

// New returns an empty map ordered by cmp.Compare. Nodes come from an
// allocator rebound from a; nil means alloc.Heap.
func New[K cmp.Ordered, V any](a alloc.Allocator[Pair[K, V]]) *Map[K, V] {
	return NewFunc[K, V](a, cmp.Compare[K])
}

// NewFunc is like New with a custom key order.
func NewFunc[K, V any](a alloc.Allocator[Pair[K, V]], compare func(a, b K) int) *Map[K, V] {
	m := &Map[K, V]{compare: compare}
	if a == nil {
		m.alloc = alloc.NewHeap[Node[K, V]]()
	} else {
		m.alloc = alloc.Rebind[Node[K, V]](a)
	}
	return m
}

func (m *Map[K, V]) Len() int {
	return m.len
}

// Allocator returns the allocator nodes are taken from.
func (m *Map[K, V]) Allocator() alloc.Allocator[Node[K, V]] {
	return m.alloc
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	for n := m.root; n != nil; {
		switch c := m.compare(k, n.Key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.Value, true
		}
	}
	var zero V
	return zero, false
}

// Emplace inserts k with v unless k is already present. It reports whether
// an entry was added.
func (m *Map[K, V]) Emplace(k K, v V) (bool, error) {
	root, added, err := m.insert(m.root, k, v, false)
	m.root = root
	return added, err
}

// Set stores v under k, replacing any previous value.
func (m *Map[K, V]) Set(k K, v V) error {
	root, _, err := m.insert(m.root, k, v, true)
	m.root = root
	return err
}

func (m *Map[K, V]) insert(n *Node[K, V], k K, v V, assign bool) (*Node[K, V], bool, error) {
	if n == nil {
		nn, err := m.newNode()
		if err != nil {
			return nil, false, err
		}
		m.alloc.Construct(nn, Node[K, V]{Pair: Pair[K, V]{Key: k, Value: v}, height: 1})
		m.len++
		return nn, true, nil
	}
	var added bool
	var err error
	switch c := m.compare(k, n.Key); {
	case c < 0:
		n.left, added, err = m.insert(n.left, k, v, assign)
	case c > 0:
		n.right, added, err = m.insert(n.right, k, v, assign)
	default:
		if assign {
			n.Value = v
		}
		return n, false, nil
	}
	if !added {
		return n, false, err
	}
	return rebalance(n), true, nil
}

func (m *Map[K, V]) newNode() (*Node[K, V], error) {
	if n := m.free; n != nil {
		m.free = n.left
		n.left = nil
		return n, nil
	}
	p, err := m.alloc.Allocate(1)
	if err != nil {
		return nil, err
	}
	return &p[0], nil
}

// Delete removes k and reports whether it was present.
func (m *Map[K, V]) Delete(k K) bool {
	root, removed := m.delete(m.root, k)
	m.root = root
	if removed == nil {
		return false
	}
	m.alloc.Destroy(removed)
	removed.left = m.free
	m.free = removed
	m.len--
	return true
}

func (m *Map[K, V]) delete(n *Node[K, V], k K) (*Node[K, V], *Node[K, V]) {
	if n == nil {
		return nil, nil
	}
	var removed *Node[K, V]
	switch c := m.compare(k, n.Key); {
	case c < 0:
		n.left, removed = m.delete(n.left, k)
	case c > 0:
		n.right, removed = m.delete(n.right, k)
	default:
		if n.left == nil {
			return n.right, n
		}
		if n.right == nil {
			return n.left, n
		}
		right, succ := removeMin(n.right)
		succ.left, succ.right = n.left, right
		return rebalance(succ), n
	}
	if removed == nil {
		return n, nil
	}
	return rebalance(n), removed
}

func removeMin[K, V any](n *Node[K, V]) (*Node[K, V], *Node[K, V]) {
	if n.left == nil {
		return n.right, n
	}
	var least *Node[K, V]
	n.left, least = removeMin(n.left)
	return rebalance(n), least
}

// All yields the entries in key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var stack []*Node[K, V]
		n := m.root
		for n != nil || len(stack) > 0 {
			for ; n != nil; n = n.left {
				stack = append(stack, n)
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n.Key, n.Value) {
				return
			}
			n = n.right
		}
	}
}

// Clear finalizes every entry and hands all node storage back to the
// allocator.
func (m *Map[K, V]) Clear() {
	var nodes []*Node[K, V]
	for n := m.free; n != nil; n = n.left {
		nodes = append(nodes, n)
	}
	freed := len(nodes)
	stack := []*Node[K, V]{}
	if m.root != nil {
		stack = append(stack, m.root)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, n)
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
	}
	for _, n := range nodes[freed:] {
		m.alloc.Destroy(n)
	}
	for _, n := range nodes {
		m.alloc.Deallocate(unsafe.Slice(n, 1))
	}
	m.root, m.free, m.len = nil, nil, 0
}

func height[K, V any](n *Node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func fix[K, V any](n *Node[K, V]) {
	n.height = max(height(n.left), height(n.right)) + 1
}

func rotateRight[K, V any](n *Node[K, V]) *Node[K, V] {
	l := n.left
	n.left, l.right = l.right, n
	fix(n)
	fix(l)
	return l
}

func rotateLeft[K, V any](n *Node[K, V]) *Node[K, V] {
	r := n.right
	n.right, r.left = r.left, n
	fix(n)
	fix(r)
	return r
}

func rebalance[K, V any](n *Node[K, V]) *Node[K, V] {
	fix(n)
	switch b := height(n.left) - height(n.right); {
	case b > 1:
		if height(n.left.left) < height(n.left.right) {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case b < -1:
		if height(n.right.right) < height(n.right.left) {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}
