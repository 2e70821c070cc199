// Package alloc provides allocators that containers use for element storage.
//
// Chunked serves many small requests from a few large chunks with a bump
// offset. Heap is the general-purpose fallback that asks the Go runtime for
// every request. Both implement Allocator, the protocol containers in this
// module are written against.
//
// Allocators are not safe for concurrent use.
package alloc

import "github.com/modern-go/reflect2"

// Allocator hands out storage for elements of type T and manages the
// lifetime of elements placed in it.
//
// Allocate returns storage for n contiguous elements. Deallocate gives back
// a slice previously returned by Allocate; slices the allocator does not
// recognise are ignored. Construct and Destroy begin and end the logical
// life of a single element without touching the backing storage.
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Deallocate(p []T)
	Construct(p *T, v T)
	Destroy(p *T)
	Binder
}

// Finalizer is implemented by elements that need cleanup when destroyed.
type Finalizer interface {
	Finalize()
}

// construct stores v at p.
func construct[T any](p *T, v T) {
	*p = v
}

// Finalize runs the finalizer of the element at p, if it has one.
func Finalize[T any](p *T) {
	if p == nil {
		return
	}
	if f, ok := any(p).(Finalizer); ok {
		f.Finalize()
	} else if f, ok := any(*p).(Finalizer); ok && !reflect2.IsNil(f) {
		f.Finalize()
	}
}

// destroy finalizes the element and zeroes the slot so the collector does
// not see stale references through a retained chunk.
func destroy[T any](p *T) {
	if p == nil {
		return
	}
	Finalize(p)
	var zero T
	*p = zero
}
