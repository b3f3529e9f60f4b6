package alloc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/verify"
	"github.com/joshuapare/tagheap/internal/format"
)

func TestOpen_ImageRoundTrip(t *testing.T) {
	h := newTestHeap(t, 1<<20, nil)
	p := mustAlloc(t, h, 100)
	copy(h.Bytes(p), "survives the round trip")
	q := mustAlloc(t, h, 6000)
	mustAlloc(t, h, 32)
	require.NoError(t, h.Free(q))

	var buf bytes.Buffer
	require.NoError(t, arena.WriteImage(&buf, h.Arena()))
	a, err := arena.ReadImage(&buf, 1<<20)
	require.NoError(t, err)

	wantSum := h.Checksum()
	wantFree := freeList(h)
	// Where the saved heap places its next allocation.
	wantNext := mustAlloc(t, h, 200)

	for _, cfg := range []*Config{nil, {AddressIndex: true}} {
		img := arena.NewMemory(1 << 20)
		_, err := img.Grow(a.Size())
		require.NoError(t, err)
		copy(img.Bytes(), a.Bytes())

		h2, err := Open(img, cfg)
		require.NoError(t, err)
		assert.Equal(t, wantSum, h2.Checksum())
		assert.Equal(t, wantFree, freeList(h2))
		assert.Equal(t, "survives the round trip", string(h2.Bytes(p)[:23]))

		assert.Equal(t, wantNext, mustAlloc(t, h2, 200))
		requireHeapOK(t, h2, "reopened")
	}
}

func TestOpen_RejectsCorruptImage(t *testing.T) {
	h := newTestHeap(t, 0, nil)
	p := mustAlloc(t, h, 40)
	format.PutU32(h.data, int(format.HeaderOffset(uint32(p))), format.Pack(48, false))

	_, err := Open(h.Arena(), nil)
	require.ErrorIs(t, err, ErrCorrupt)

	var verr *verify.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, verify.TypeBlock, verr.Type)
}

func TestOpen_EmptyArena(t *testing.T) {
	_, err := Open(arena.NewMemory(0), nil)
	require.ErrorIs(t, err, ErrCorrupt)
}
