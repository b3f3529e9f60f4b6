package arena

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GrowReturnsOldBreak(t *testing.T) {
	m := NewMemory(64)

	old, err := m.Grow(16)
	require.NoError(t, err)
	assert.Equal(t, 0, old)

	old, err = m.Grow(32)
	require.NoError(t, err)
	assert.Equal(t, 16, old)
	assert.Equal(t, 48, m.Size())
	assert.Len(t, m.Bytes(), 48)
}

func TestMemory_GrowZero(t *testing.T) {
	m := NewMemory(64)
	_, err := m.Grow(8)
	require.NoError(t, err)

	old, err := m.Grow(0)
	require.NoError(t, err)
	assert.Equal(t, 8, old)
	assert.Equal(t, 8, m.Size())
}

func TestMemory_Exhausted(t *testing.T) {
	m := NewMemory(64)
	_, err := m.Grow(60)
	require.NoError(t, err)

	_, err = m.Grow(8)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 60, m.Size(), "failed grow must not move the break")
}

func TestMemory_NegativeGrow(t *testing.T) {
	m := NewMemory(64)
	_, err := m.Grow(-1)
	require.ErrorIs(t, err, ErrNegativeGrow)
}

func TestMemory_BytesDoNotMove(t *testing.T) {
	m := NewMemory(4096)
	_, err := m.Grow(16)
	require.NoError(t, err)
	first := &m.Bytes()[0]

	_, err = m.Grow(2048)
	require.NoError(t, err)
	assert.Same(t, first, &m.Bytes()[0])
}

func TestMemory_ResetClears(t *testing.T) {
	m := NewMemory(64)
	_, err := m.Grow(8)
	require.NoError(t, err)
	copy(m.Bytes(), "abcdefgh")

	m.Reset()
	assert.Equal(t, 0, m.Size())

	_, err = m.Grow(8)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), m.Bytes())
}

func TestMemory_DefaultMax(t *testing.T) {
	m := NewMemory(0)
	assert.Equal(t, DefaultMaxHeap, m.Cap())
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory(64)
	require.NoError(t, m.Close())
	_, err := m.Grow(8)
	require.ErrorIs(t, err, ErrClosed)
}

func TestBounds(t *testing.T) {
	m := NewMemory(64)
	lo, hi := Bounds(m)
	assert.Equal(t, 0, lo)
	assert.Equal(t, -1, hi)

	_, err := m.Grow(24)
	require.NoError(t, err)
	lo, hi = Bounds(m)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 23, hi)
}
