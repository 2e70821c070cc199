package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"

	"github.com/funny-falcon/chunkalloc/alloc"
	"github.com/funny-falcon/chunkalloc/ordmap"
	"github.com/funny-falcon/chunkalloc/seq"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	N     int
	Chunk int
	Mmap  bool
}

type Result struct {
	Name     string        `json:"name"`
	Elements int           `json:"elements"`
	Duration time.Duration `json:"ns"`
	Chunks   int           `json:"chunks,omitempty"`
	Mapped   bool          `json:"mapped,omitempty"`
}

type Report struct {
	Chunk   int      `json:"chunk"`
	Results []Result `json:"results"`
}

// outcome is what a scenario leaves behind once its timed part is over.
type outcome struct {
	chunks int
	mapped bool
	// cleanup runs after the clock stops.
	cleanup func()
}

type scenario struct {
	name string
	run  func(cfg Config, opts []alloc.Option) (outcome, error)
}

func chunkedOutcome[T any](a alloc.Allocator[T], cleanup func()) outcome {
	c := a.(*alloc.Chunked[T])
	return outcome{chunks: c.NumChunks(), mapped: c.Mapped(), cleanup: cleanup}
}

var scenarios = []scenario{
	{"raw/heap", func(cfg Config, _ []alloc.Option) (outcome, error) {
		return outcome{}, fillRaw(alloc.NewHeap[int](), cfg.N)
	}},
	{"raw/chunked", func(cfg Config, opts []alloc.Option) (outcome, error) {
		a := alloc.NewChunked[int](cfg.Chunk, opts...)
		if err := fillRaw(a, cfg.N); err != nil {
			a.Release()
			return outcome{}, err
		}
		return chunkedOutcome[int](a, a.Release), nil
	}},
	{"list/heap", func(cfg Config, _ []alloc.Option) (outcome, error) {
		return outcome{}, fillList(seq.New[int](nil), cfg.N)
	}},
	{"list/chunked", func(cfg Config, opts []alloc.Option) (outcome, error) {
		l := seq.New[int](alloc.NewChunked[int](cfg.Chunk, opts...))
		if err := fillList(l, cfg.N); err != nil {
			l.Clear()
			return outcome{}, err
		}
		return chunkedOutcome(l.Allocator(), l.Clear), nil
	}},
	{"map/btree", func(cfg Config, _ []alloc.Option) (outcome, error) {
		var m btree.Map[int, int]
		for i := 0; i < cfg.N; i++ {
			m.Set(i, factorial(i%10))
		}
		for i := 0; i < cfg.N; i++ {
			if v, _ := m.Get(i); v != factorial(i%10) {
				return outcome{}, errors.Errorf("key %d holds %d", i, v)
			}
		}
		return outcome{}, nil
	}},
	{"map/heap", func(cfg Config, _ []alloc.Option) (outcome, error) {
		return outcome{}, fillMap(ordmap.New[int, int](nil), cfg.N)
	}},
	{"map/chunked", func(cfg Config, opts []alloc.Option) (outcome, error) {
		m := ordmap.New[int, int](alloc.NewChunked[ordmap.Pair[int, int]](cfg.Chunk, opts...))
		if err := fillMap(m, cfg.N); err != nil {
			m.Clear()
			return outcome{}, err
		}
		return chunkedOutcome(m.Allocator(), m.Clear), nil
	}},
}

// Run fills every container kind with cfg.N elements and times it.
// Releasing the storage afterwards is not part of the measurement.
func Run(cfg Config, log logrus.FieldLogger) (Report, error) {
	rep := Report{Chunk: cfg.Chunk}
	opts := []alloc.Option{alloc.WithLogger(log), alloc.WithMmap(cfg.Mmap)}
	for _, sc := range scenarios {
		start := time.Now()
		out, err := sc.run(cfg, opts)
		took := time.Since(start)
		if err != nil {
			return rep, errors.Wrap(err, sc.name)
		}
		if out.cleanup != nil {
			out.cleanup()
		}
		res := Result{
			Name:     sc.name,
			Elements: cfg.N,
			Duration: took,
			Chunks:   out.chunks,
			Mapped:   out.mapped,
		}
		log.WithFields(logrus.Fields{
			"scenario": res.Name,
			"took":     res.Duration,
		}).Debug("scenario done")
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

func fillRaw(a alloc.Allocator[int], n int) error {
	ptrs := make([]*int, 0, n)
	for i := 0; i < n; i++ {
		p, err := a.Allocate(1)
		if err != nil {
			return err
		}
		a.Construct(&p[0], i)
		ptrs = append(ptrs, &p[0])
	}
	for i, p := range ptrs {
		if *p != i {
			return errors.Errorf("element %d holds %d", i, *p)
		}
	}
	return nil
}

func fillList(l *seq.List[int], n int) error {
	for i := 0; i < n; i++ {
		if err := l.EmplaceBack(i); err != nil {
			return err
		}
	}
	k := 0
	for it := l.Begin(); !it.Equal(l.End()); it = it.Next() {
		if it.Value() != k {
			return errors.Errorf("element %d holds %d", k, it.Value())
		}
		k++
	}
	return nil
}

func fillMap(m *ordmap.Map[int, int], n int) error {
	for i := 0; i < n; i++ {
		if _, err := m.Emplace(i, factorial(i%10)); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if v, _ := m.Get(i); v != factorial(i%10) {
			return errors.Errorf("key %d holds %d", i, v)
		}
	}
	return nil
}

func factorial(n int) int {
	r := 1
	for i := 2; i <= n; i++ {
		r *= i
	}
	return r
}

func writeJSON(w io.Writer, rep Report) error {
	return json.NewEncoder(w).Encode(rep)
}

func writeText(w io.Writer, rep Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "scenario\telements\ttime\tchunks\tmmap\n")
	for _, r := range rep.Results {
		chunks := "-"
		if r.Chunks > 0 {
			chunks = fmt.Sprint(r.Chunks)
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\t%s\t%v\n", r.Name, r.Elements, r.Duration, chunks, r.Mapped)
	}
	return tw.Flush()
}
