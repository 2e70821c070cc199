// Package seq implements an insertion-ordered sequence whose nodes come
// from an alloc.Allocator.
package seq

import (
	"iter"
	"unsafe"

	"github.com/funny-falcon/chunkalloc/alloc"
)

// Node is the unit of storage a List requests from its allocator.
type Node[T any] struct {
	Value T
	next  *Node[T]
}

// Finalize forwards to the value's finalizer.
func (n *Node[T]) Finalize() {
	alloc.Finalize(&n.Value)
}

// List is a forward sequence of T. Every EmplaceBack asks the allocator for
// exactly one node.
type List[T any] struct {
	alloc alloc.Allocator[Node[T]]
	head  *Node[T]
	tail  *Node[T]
	len   int
}

// New returns an empty list using an allocator rebound from a to the node
// type. A nil a means alloc.Heap.
func New[T any](a alloc.Allocator[T]) *List[T] {
	if a == nil {
		return NewWith[T](nil)
	}
	return NewWith[T](alloc.Rebind[Node[T]](a))
}

// NewWith returns an empty list that takes its nodes from a.
func NewWith[T any](a alloc.Allocator[Node[T]]) *List[T] {
	if a == nil {
		a = alloc.NewHeap[Node[T]]()
	}
	return &List[T]{alloc: a}
}

// EmplaceBack appends v. On error the list is unchanged.
func (l *List[T]) EmplaceBack(v T) error {
	p, err := l.alloc.Allocate(1)
	if err != nil {
		return err
	}
	n := &p[0]
	l.alloc.Construct(n, Node[T]{Value: v})
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.len++
	return nil
}

func (l *List[T]) Len() int {
	return l.len
}

// Allocator returns the allocator nodes are taken from.
func (l *List[T]) Allocator() alloc.Allocator[Node[T]] {
	return l.alloc
}

// Begin returns a cursor at the first element.
func (l *List[T]) Begin() Iter[T] {
	return Iter[T]{n: l.head}
}

// End returns the cursor one past the last element.
func (l *List[T]) End() Iter[T] {
	return Iter[T]{}
}

// All yields the elements in insertion order.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Clear destroys every element and hands its node back to the allocator.
func (l *List[T]) Clear() {
	// Releasing a chunk wipes every node in it, so links are read up front.
	nodes := make([]*Node[T], 0, l.len)
	for n := l.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	for _, n := range nodes {
		l.alloc.Destroy(n)
	}
	for _, n := range nodes {
		l.alloc.Deallocate(unsafe.Slice(n, 1))
	}
	l.head, l.tail, l.len = nil, nil, 0
}

// Iter is a forward cursor into a List.
type Iter[T any] struct {
	n *Node[T]
}

// Value returns the element under the cursor. It panics at End.
func (it Iter[T]) Value() T {
	return it.n.Value
}

// Ptr returns the address of the element under the cursor.
func (it Iter[T]) Ptr() *T {
	return &it.n.Value
}

func (it Iter[T]) Next() Iter[T] {
	return Iter[T]{n: it.n.next}
}

func (it Iter[T]) Equal(o Iter[T]) bool {
	return it.n == o.n
}
