package ordmap

import (
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/chunkalloc/alloc"
)

func checkTree[K, V any](t *testing.T, m *Map[K, V], n *Node[K, V]) int {
	if n == nil {
		return 0
	}
	if n.left != nil {
		require.Negative(t, m.compare(n.left.Key, n.Key))
	}
	if n.right != nil {
		require.Positive(t, m.compare(n.right.Key, n.Key))
	}
	l := checkTree(t, m, n.left)
	r := checkTree(t, m, n.right)
	require.LessOrEqual(t, l-r, 1)
	require.GreaterOrEqual(t, l-r, -1)
	require.Equal(t, max(l, r)+1, n.height)
	return n.height
}

func TestBalanced(t *testing.T) {
	m := New[int, int](alloc.NewChunked[Pair[int, int]](32))
	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(i, i))
	}
	h := checkTree(t, m, m.root)
	require.LessOrEqual(t, h, 15)

	for i := 0; i < 1000; i += 3 {
		require.True(t, m.Delete(i))
	}
	checkTree(t, m, m.root)
	require.Equal(t, 666, m.Len())
}

func TestDeleteReusesNodes(t *testing.T) {
	m := New[int, int](alloc.NewChunked[Pair[int, int]](10))
	c := m.alloc.(*alloc.Chunked[Node[int, int]])
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Set(i, i))
	}
	require.Equal(t, 1, c.NumChunks())

	require.True(t, m.Delete(3))
	require.True(t, m.Delete(7))
	require.False(t, m.Delete(7))
	require.Equal(t, 8, m.Len())
	require.Equal(t, 1, c.NumChunks())

	require.NoError(t, m.Set(30, 30))
	require.NoError(t, m.Set(70, 70))
	require.Equal(t, 1, c.NumChunks())
	require.Nil(t, m.free)
	checkTree(t, m, m.root)
}

func TestClearReleasesChunks(t *testing.T) {
	m := New[int, string](alloc.NewChunked[Pair[int, string]](4))
	c := m.alloc.(*alloc.Chunked[Node[int, string]])
	for i := 0; i < 12; i++ {
		require.NoError(t, m.Set(i, "v"))
	}
	require.True(t, m.Delete(0))
	require.Equal(t, 9, c.NumChunks())

	m.Clear()
	require.Equal(t, 0, c.NumChunks())
	require.Nil(t, m.root)
	require.Nil(t, m.free)

	require.NoError(t, m.Set(1, "w"))
	v, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, "w", v)
}

func TestOutOfMemory(t *testing.T) {
	size := int(unsafe.Sizeof(Node[int, int]{}))
	m := New[int, int](alloc.NewChunked[Pair[int, int]](3, alloc.WithLimit(3*size)))
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(i, i))
	}
	err := m.Set(3, 3)
	require.True(t, errors.Is(err, alloc.ErrOutOfMemory))
	added, err := m.Emplace(4, 4)
	require.False(t, added)
	require.True(t, errors.Is(err, alloc.ErrOutOfMemory))

	require.Equal(t, 3, m.Len())
	checkTree(t, m, m.root)
	for i := 0; i < 3; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.NoError(t, m.Set(1, 10))
}
