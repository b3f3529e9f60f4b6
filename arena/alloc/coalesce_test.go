package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeBlocks allocates a (112), b (208), c (3776); c consumes the rest of
// the first chunk so no free tail interferes.
func threeBlocks(t *testing.T, cfg *Config) (h *Heap, a, b, c Ptr) {
	t.Helper()
	h = newTestHeap(t, 0, cfg)
	a = mustAlloc(t, h, 100)
	b = mustAlloc(t, h, 200)
	c = mustAlloc(t, h, 3768)
	require.Empty(t, freeList(h))
	return h, a, b, c
}

func TestCoalesce_Classify(t *testing.T) {
	tests := []struct {
		name  string
		freed []int // indexes of blocks freed before classifying b
		want  coalesceCase
	}{
		{"both allocated", nil, bothAllocated},
		{"next free", []int{2}, nextFree},
		{"prev free", []int{0}, prevFree},
		{"both free", []int{0, 2}, bothFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a, b, c := threeBlocks(t, nil)
			ptrs := []Ptr{a, b, c}
			for _, i := range tt.freed {
				require.NoError(t, h.Free(ptrs[i]))
			}
			size := h.block(uint32(b)).Size
			assert.Equal(t, tt.want, h.classify(uint32(b), size))
		})
	}
}

func TestCoalesce_BothAllocated(t *testing.T) {
	h, _, b, _ := threeBlocks(t, nil)

	require.NoError(t, h.Free(b))
	assert.Equal(t, []Block{{Off: b, Size: 208}}, freeList(h))
	assert.Equal(t, 2, h.Stats().CoalesceNone)
	requireHeapOK(t, h, "none")
}

func TestCoalesce_NextFree(t *testing.T) {
	h, _, b, c := threeBlocks(t, nil)

	require.NoError(t, h.Free(c))
	require.NoError(t, h.Free(b))

	assert.Equal(t, []Block{{Off: b, Size: 208 + 3776}}, freeList(h))
	assert.Equal(t, 1, h.Stats().CoalesceNext)
	requireHeapOK(t, h, "next")
}

func TestCoalesce_PrevFree(t *testing.T) {
	h, a, b, _ := threeBlocks(t, nil)

	require.NoError(t, h.Free(a))
	require.NoError(t, h.Free(b))

	assert.Equal(t, []Block{{Off: a, Size: 112 + 208}}, freeList(h))
	assert.Equal(t, 1, h.Stats().CoalescePrev)
	requireHeapOK(t, h, "prev")
}

func TestCoalesce_BothFree(t *testing.T) {
	h, a, b, c := threeBlocks(t, nil)

	require.NoError(t, h.Free(a))
	require.NoError(t, h.Free(c))
	require.Len(t, freeList(h), 2)

	require.NoError(t, h.Free(b))
	assert.Equal(t, []Block{{Off: a, Size: 4096}}, freeList(h))
	assert.Equal(t, 1, h.Stats().CoalesceBoth)
	requireHeapOK(t, h, "both")
}

func TestCoalesce_NextFreeKeepsListPosition(t *testing.T) {
	h := newTestHeap(t, 0, nil)

	// free(x) | alloc | y | free(z) | alloc | tail
	x := mustAlloc(t, h, 40)
	mustAlloc(t, h, 40)
	y := mustAlloc(t, h, 40)
	z := mustAlloc(t, h, 40)
	mustAlloc(t, h, 40)
	require.NoError(t, h.Free(x))
	require.NoError(t, h.Free(z))

	require.NoError(t, h.Free(y))

	list := freeList(h)
	require.Len(t, list, 3)
	assert.Equal(t, x, list[0].Off)
	assert.Equal(t, Block{Off: y, Size: 96}, list[1], "y absorbs z in z's slot")
	requireHeapOK(t, h, "position")
}

func TestCoalesce_MergeArmsWithIndex(t *testing.T) {
	for _, freed := range [][]int{{1}, {2, 1}, {0, 1}, {0, 2, 1}} {
		h, a, b, c := threeBlocks(t, &Config{AddressIndex: true})
		ptrs := []Ptr{a, b, c}
		for _, i := range freed {
			require.NoError(t, h.Free(ptrs[i]))
			requireHeapOK(t, h, "index arm")
		}
	}
}
