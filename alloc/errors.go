package alloc

import "github.com/pkg/errors"

// ErrOutOfMemory is returned when storage for a new chunk cannot be obtained.
var ErrOutOfMemory = errors.New("alloc: out of memory")

func outOfMemory(n, elemSize int) error {
	return errors.Wrapf(ErrOutOfMemory, "requested %d elements of %d bytes", n, elemSize)
}
