package alloc

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Heap asks the Go runtime for every request. Deallocate only drops the
// allocator's interest; the collector reclaims the storage.
type Heap[T any] struct{}

// NewHeap returns a Heap for T.
func NewHeap[T any]() *Heap[T] {
	return &Heap[T]{}
}

// Allocate returns a fresh slice of n elements. It returns nil for n <= 0.
func (h *Heap[T]) Allocate(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	buf, err := makeChunk[T](n)
	if err != nil {
		var zero T
		return nil, errors.Wrap(outOfMemory(n, int(unsafe.Sizeof(zero))), err.Error())
	}
	return buf, nil
}

// Deallocate zeroes p so it no longer keeps anything reachable.
func (h *Heap[T]) Deallocate(p []T) {
	clear(p)
}

// Construct stores v at p.
func (h *Heap[T]) Construct(p *T, v T) {
	construct(p, v)
}

// Destroy finalizes the element at p and zeroes it.
func (h *Heap[T]) Destroy(p *T) {
	destroy(p)
}

// Binding describes h for Rebind.
func (h *Heap[T]) Binding() Binding {
	return Binding{kind: heapKind, cfg: newConfig(nil)}
}

var _ Allocator[int] = (*Heap[int])(nil)
