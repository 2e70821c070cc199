package alloc

import "github.com/modern-go/reflect2"

type kind uint8

const (
	heapKind kind = iota
	chunkedKind
)

// Binding captures how an allocator is configured, independent of its
// element type. It is what a container needs to build an allocator for
// its own node type out of one declared for the element type.
type Binding struct {
	kind     kind
	capacity int
	cfg      config
}

// Capacity is the chunk capacity, in elements, of the bound allocator.
// It is zero for Heap.
func (b Binding) Capacity() int {
	return b.capacity
}

// Binder is implemented by every allocator in this package.
type Binder interface {
	Binding() Binding
}

// Rebind returns a new, empty allocator for U configured like b: same kind,
// same chunk capacity, same options. A nil b, including a typed nil
// pointer, yields a Heap.
func Rebind[U any](b Binder) Allocator[U] {
	if b == nil || reflect2.IsNil(b) {
		return NewHeap[U]()
	}
	bd := b.Binding()
	if bd.kind == chunkedKind {
		return NewChunked[U](bd.capacity, bd.cfg.options()...)
	}
	return NewHeap[U]()
}

// RebindChunked converts a chunk allocator for T into a fresh chunk
// allocator for U with the same chunk capacity and options.
func RebindChunked[U, T any](a *Chunked[T]) *Chunked[U] {
	return NewChunked[U](a.capacity, a.cfg.options()...)
}
