//go:build linux || darwin

package alloc

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/dirty"
)

func TestFileArena_PersistAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.bin")

	fa, err := arena.OpenFile(path, 1<<20)
	require.NoError(t, err)

	tr := dirty.NewTracker()
	h, err := New(fa, &Config{Dirty: tr})
	require.NoError(t, err)

	p := mustAlloc(t, h, 64)
	copy(h.Bytes(p), "kept on disk")
	h.Touch(p)
	big := mustAlloc(t, h, 9000)
	mustAlloc(t, h, 16)
	require.NoError(t, h.Free(big))
	requireHeapOK(t, h, "before flush")

	sum := h.Checksum()
	require.NoError(t, fa.Flush(context.Background(), tr, dirty.FlushAuto))
	require.NoError(t, fa.Close())

	fb, err := arena.OpenFile(path, 1<<20)
	require.NoError(t, err)
	defer fb.Close()

	h2, err := Open(fb, nil)
	require.NoError(t, err)
	assert.Equal(t, sum, h2.Checksum())
	assert.Equal(t, "kept on disk", string(h2.Bytes(p)[:12]))

	// Growth on the reopened file arena still works.
	mustAlloc(t, h2, 20000)
	requireHeapOK(t, h2, "after reopen")
}

func TestMappedArena_Heap(t *testing.T) {
	m, err := arena.NewMapped(4 << 20)
	require.NoError(t, err)
	defer m.Close()

	h, err := New(m, nil)
	require.NoError(t, err)
	propertyOnHeap(t, h)
}

// propertyOnHeap runs a short fixed workload against an existing heap.
func propertyOnHeap(t *testing.T, h *Heap) {
	t.Helper()
	var ptrs []Ptr
	for i := range 200 {
		p := mustAlloc(t, h, 1+(i*37)%900)
		fill(h.Bytes(p), byte(i))
		ptrs = append(ptrs, p)
	}
	for i := 0; i < len(ptrs); i += 2 {
		require.NoError(t, h.Free(ptrs[i]))
	}
	for i := 1; i < len(ptrs); i += 2 {
		for _, c := range h.Bytes(ptrs[i]) {
			require.Equal(t, byte(i), c)
		}
	}
	requireHeapOK(t, h, "mapped")
}
