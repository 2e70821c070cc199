package alloc

import (
	"math"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/modern-go/reflect2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type chunk[T any] struct {
	buf    []T
	mapped []byte
}

func (c *chunk[T]) base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(c.buf))
}

// chunkGen obtains chunk storage from the Go heap or, for pointer-free
// element types, from anonymous mappings.
type chunkGen[T any] struct {
	elemSize int
	mmap     bool
	limit    int
	live     int
	log      logrus.FieldLogger
}

func newChunkGen[T any](cfg config) chunkGen[T] {
	typ := reflect2.TypeOfPtr((*T)(nil)).Elem().Type1()
	g := chunkGen[T]{
		elemSize: int(typ.Size()),
		limit:    cfg.limit,
		log:      cfg.log,
	}
	if cfg.mmap {
		g.mmap = mmapSupported && g.elemSize > 0 && pointerFree(typ)
		if !g.mmap {
			g.log.WithField("type", typ.String()).Debug("mmap chunks unavailable, using heap")
		}
	}
	return g
}

func (g *chunkGen[T]) gen(n int) (chunk[T], error) {
	var c chunk[T]
	if g.elemSize > 0 && n > math.MaxInt/g.elemSize {
		return c, outOfMemory(n, g.elemSize)
	}
	size := n * g.elemSize
	if g.limit > 0 && g.live+size > g.limit {
		return c, errors.Wrapf(outOfMemory(n, g.elemSize), "limit %d bytes, %d live", g.limit, g.live)
	}
	if g.mmap {
		b, err := mmap(size)
		if err != nil {
			return c, errors.Wrapf(outOfMemory(n, g.elemSize), "mmap: %v", err)
		}
		c.mapped = b
		c.buf = unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
	} else {
		buf, err := makeChunk[T](n)
		if err != nil {
			return c, errors.Wrap(outOfMemory(n, g.elemSize), err.Error())
		}
		c.buf = buf
	}
	g.live += size
	g.log.WithFields(logrus.Fields{
		"elems":  n,
		"bytes":  size,
		"mapped": c.mapped != nil,
	}).Debug("chunk created")
	return c, nil
}

func (g *chunkGen[T]) release(c chunk[T]) {
	size := len(c.buf) * g.elemSize
	g.live -= size
	if c.mapped != nil {
		if err := munmap(c.mapped); err != nil {
			g.log.WithError(err).Warn("munmap chunk")
		}
	} else {
		clear(c.buf)
	}
	g.log.WithFields(logrus.Fields{
		"elems": len(c.buf),
		"bytes": size,
	}).Debug("chunk released")
}

func makeChunk[T any](n int) (buf []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			err = re
		}
	}()
	return make([]T, n), nil
}

// pointerFree reports whether values of t hold no pointers the collector
// would need to scan.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}
