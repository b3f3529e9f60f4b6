package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/arena"
)

// newTestHeap creates a heap on a fresh Memory arena of max bytes (0 for the default).
func newTestHeap(t testing.TB, max int, cfg *Config) *Heap {
	t.Helper()
	h, err := New(arena.NewMemory(max), cfg)
	require.NoError(t, err)
	return h
}

// freeList returns the free list in list order.
func freeList(h *Heap) []Block {
	var out []Block
	h.FreeBlocks(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// blocks returns every block in address order.
func blocks(h *Heap) []Block {
	var out []Block
	h.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

func mustAlloc(t testing.TB, h *Heap, size int) Ptr {
	t.Helper()
	p, err := h.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

func requireHeapOK(t testing.TB, h *Heap, context string) {
	t.Helper()
	require.NoError(t, h.CheckHeap(context))
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
