package alloc

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures an allocator.
type Option func(*config)

type config struct {
	log   logrus.FieldLogger
	mmap  bool
	limit int
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}()

func newConfig(opts []Option) config {
	c := config{log: discard}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) options() []Option {
	return []Option{WithLogger(c.log), WithMmap(c.mmap), WithLimit(c.limit)}
}

// WithLogger sets the logger chunk lifecycle events are reported to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMmap makes chunks of pointer-free element types come from anonymous
// memory mappings instead of the Go heap. It has no effect on platforms
// without mmap.
func WithMmap(on bool) Option {
	return func(c *config) {
		c.mmap = on
	}
}

// WithLimit caps the total size in bytes of live chunks. Zero means no cap.
func WithLimit(bytes int) Option {
	return func(c *config) {
		if bytes >= 0 {
			c.limit = bytes
		}
	}
}
