//go:build !linux && !darwin && !freebsd

package alloc

import "github.com/pkg/errors"

const mmapSupported = false

func mmap(size int) ([]byte, error) {
	return nil, errors.New("alloc: mmap is not supported on this platform")
}

func munmap(b []byte) error {
	return nil
}
