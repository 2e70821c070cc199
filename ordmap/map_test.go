package ordmap_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/btree"

	"github.com/funny-falcon/chunkalloc/alloc"
	"github.com/funny-falcon/chunkalloc/ordmap"
)

func factorial(n int) int {
	r := 1
	for i := 2; i <= n; i++ {
		r *= i
	}
	return r
}

func TestFactorials(t *testing.T) {
	m := ordmap.New[int, int](alloc.NewChunked[ordmap.Pair[int, int]](10))
	for i := 0; i < 10; i++ {
		added, err := m.Emplace(i, factorial(i))
		require.NoError(t, err)
		require.True(t, added)
	}

	want := []int{1, 1, 2, 6, 24, 120, 720, 5040, 40320, 362880}
	for k, v := range want {
		got, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, v, got, "key %d", k)
	}

	var keys []int
	for k := range m.All() {
		keys = append(keys, k)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, keys)
}

func TestEmplaceKeepsValue(t *testing.T) {
	m := ordmap.New[string, int](nil)
	added, err := m.Emplace("a", 1)
	require.NoError(t, err)
	require.True(t, added)
	added, err = m.Emplace("a", 2)
	require.NoError(t, err)
	require.False(t, added)
	v, _ := m.Get("a")
	require.Equal(t, 1, v)

	require.NoError(t, m.Set("a", 3))
	v, _ = m.Get("a")
	require.Equal(t, 3, v)
	require.Equal(t, 1, m.Len())

	_, ok := m.Get("b")
	require.False(t, ok)
}

func TestNewFunc(t *testing.T) {
	m := ordmap.NewFunc[int, string](alloc.NewHeap[ordmap.Pair[int, string]](), func(a, b int) int {
		return b - a
	})
	for i, s := range []string{"x", "y", "z"} {
		require.NoError(t, m.Set(i, s))
	}
	var got []string
	for _, v := range m.All() {
		got = append(got, v)
	}
	require.Equal(t, []string{"z", "y", "x"}, got)
}

func TestAllStops(t *testing.T) {
	m := ordmap.New[int, int](alloc.NewChunked[ordmap.Pair[int, int]](4))
	for i := 0; i < 20; i++ {
		require.NoError(t, m.Set(i, i))
	}
	n := 0
	for k := range m.All() {
		if k == 4 {
			break
		}
		n++
	}
	require.Equal(t, 4, n)
}

func TestAgainstBtree(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, capacity := range []int{0, 1, 10, 100} {
		m := ordmap.New[int, int](alloc.NewChunked[ordmap.Pair[int, int]](capacity))
		var ref btree.Map[int, int]
		for i := 0; i < 5000; i++ {
			k := rnd.Intn(500)
			switch rnd.Intn(4) {
			case 0, 1:
				require.NoError(t, m.Set(k, i))
				ref.Set(k, i)
			case 2:
				added, err := m.Emplace(k, i)
				require.NoError(t, err)
				if _, ok := ref.Get(k); !ok {
					ref.Set(k, i)
					require.True(t, added)
				} else {
					require.False(t, added)
				}
			case 3:
				_, had := ref.Delete(k)
				require.Equal(t, had, m.Delete(k))
			}
			got, ok := m.Get(k)
			want, wok := ref.Get(k)
			require.Equal(t, wok, ok)
			require.Equal(t, want, got)
		}
		require.Equal(t, ref.Len(), m.Len())

		var want, got []ordmap.Pair[int, int]
		ref.Scan(func(k, v int) bool {
			want = append(want, ordmap.Pair[int, int]{Key: k, Value: v})
			return true
		})
		for k, v := range m.All() {
			got = append(got, ordmap.Pair[int, int]{Key: k, Value: v})
		}
		require.Equal(t, want, got)

		m.Clear()
		require.Equal(t, 0, m.Len())
		for range m.All() {
			t.Fatal("cleared map is not empty")
		}
	}
}

func TestAllocatorRebound(t *testing.T) {
	m := ordmap.New[int, int](alloc.NewChunked[ordmap.Pair[int, int]](8))
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Set(i, i))
	}
	c, ok := m.Allocator().(*alloc.Chunked[ordmap.Node[int, int]])
	require.True(t, ok)
	require.Equal(t, 8, c.Capacity())
	require.Equal(t, 3, c.NumChunks())

	m.Clear()
	require.Equal(t, 0, c.NumChunks())
}

func TestTypedNilAllocator(t *testing.T) {
	var none *alloc.Chunked[ordmap.Pair[int, int]]
	m := ordmap.New[int, int](none)
	require.NoError(t, m.Set(1, 2))
	_, ok := m.Allocator().(*alloc.Heap[ordmap.Node[int, int]])
	require.True(t, ok)
}
