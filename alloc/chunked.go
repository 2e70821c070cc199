package alloc

import "unsafe"

// Chunked is a bump allocator over chunks sized for a fixed number of
// elements.
//
// Requests are served from the current chunk while it has room. A request
// that does not fit gets a new chunk sized exactly to it, which becomes
// current; only the first chunk after the allocator has no current chunk
// is sized to the configured capacity.
//
// The offset is kept per allocator, not per chunk: it tracks the current
// chunk and Deallocate decrements it whichever chunk was released.
//
// Chunks live in slots that are never shifted; current is a slot index and
// released slots are reused. Deallocate finds a chunk through an index
// keyed by base address.
type Chunked[T any] struct {
	cfg      config
	capacity int
	gen      chunkGen[T]
	chunks   []chunk[T]
	vacant   []int
	index    map[unsafe.Pointer][]int
	live     int
	current  int
	offset   int
}

// NewChunked returns an empty chunk allocator whose chunks hold capacity
// elements. A capacity of zero sizes every chunk to the request.
func NewChunked[T any](capacity int, opts ...Option) *Chunked[T] {
	if capacity < 0 {
		capacity = 0
	}
	cfg := newConfig(opts)
	return &Chunked[T]{
		cfg:      cfg,
		capacity: capacity,
		gen:      newChunkGen[T](cfg),
		index:    make(map[unsafe.Pointer][]int),
		current:  -1,
	}
}

// Allocate returns storage for n elements. It returns nil for n <= 0.
func (a *Chunked[T]) Allocate(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if a.current < 0 {
		return a.extend(max(n, a.capacity), n)
	}
	c := &a.chunks[a.current]
	if len(c.buf)-a.offset >= n {
		p := c.buf[a.offset : a.offset+n : a.offset+n]
		a.offset += n
		return p, nil
	}
	return a.extend(n, n)
}

func (a *Chunked[T]) extend(size, n int) ([]T, error) {
	c, err := a.gen.gen(size)
	if err != nil {
		return nil, err
	}
	slot := len(a.chunks)
	if k := len(a.vacant); k > 0 {
		slot = a.vacant[k-1]
		a.vacant = a.vacant[:k-1]
		a.chunks[slot] = c
	} else {
		a.chunks = append(a.chunks, c)
	}
	// zero-size element types share one base address
	base := c.base()
	a.index[base] = append(a.index[base], slot)
	a.live++
	a.current = slot
	a.offset = n
	return c.buf[:n:n], nil
}

// Deallocate releases the chunk whose base is the start of p. Slices that
// do not start at a chunk base, including ones already released, are
// ignored.
func (a *Chunked[T]) Deallocate(p []T) {
	if len(p) == 0 {
		return
	}
	base := unsafe.Pointer(unsafe.SliceData(p))
	slots, ok := a.index[base]
	if !ok {
		return
	}
	i := slots[0]
	if len(slots) == 1 {
		delete(a.index, base)
	} else {
		a.index[base] = slots[1:]
	}
	if i == a.current {
		a.current = -1
	}
	c := a.chunks[i]
	a.chunks[i] = chunk[T]{}
	a.vacant = append(a.vacant, i)
	a.live--
	a.gen.release(c)
	a.offset = max(a.offset-len(p), 0)
}

// Construct stores v at p.
func (a *Chunked[T]) Construct(p *T, v T) {
	construct(p, v)
}

// Destroy finalizes the element at p. The chunk holding it is kept.
func (a *Chunked[T]) Destroy(p *T) {
	destroy(p)
}

// Binding describes a for Rebind.
func (a *Chunked[T]) Binding() Binding {
	return Binding{kind: chunkedKind, capacity: a.capacity, cfg: a.cfg}
}

// Release gives every live chunk back. The allocator stays usable.
func (a *Chunked[T]) Release() {
	for _, c := range a.chunks {
		if c.buf != nil {
			a.gen.release(c)
		}
	}
	a.chunks = nil
	a.vacant = nil
	clear(a.index)
	a.live = 0
	a.current = -1
	a.offset = 0
}

// Capacity returns the configured chunk capacity in elements.
func (a *Chunked[T]) Capacity() int {
	return a.capacity
}

// NumChunks returns the number of live chunks.
func (a *Chunked[T]) NumChunks() int {
	return a.live
}

// Mapped reports whether chunks come from anonymous memory mappings.
func (a *Chunked[T]) Mapped() bool {
	return a.gen.mmap
}

// Offset returns the bump offset into the current chunk, in bytes.
func (a *Chunked[T]) Offset() int {
	return a.offset * a.gen.elemSize
}

var _ Allocator[int] = (*Chunked[int])(nil)
