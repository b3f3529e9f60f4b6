package arena

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_RoundTrip(t *testing.T) {
	src := NewMemory(1 << 16)
	_, err := src.Grow(4112)
	require.NoError(t, err)
	for i := range src.Bytes() {
		src.Bytes()[i] = byte(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, src))

	dst, err := ReadImage(&buf, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, src.Bytes(), dst.Bytes())
	assert.Equal(t, 1<<16, dst.Cap(), "restored arena keeps room to grow")
}

func TestImage_BadMagic(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte("NOTAHEAP\x10\x00\x00\x00\x00\x00\x00\x00"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ReadImage(&buf, 64)
	require.ErrorIs(t, err, ErrBadImage)
}

func TestImage_NotZstd(t *testing.T) {
	_, err := ReadImage(bytes.NewReader([]byte("definitely not an image")), 64)
	require.ErrorIs(t, err, ErrBadImage)
}

func TestImage_TooLarge(t *testing.T) {
	src := NewMemory(8192)
	_, err := src.Grow(8192)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, src))

	_, err = ReadImage(&buf, 4096)
	require.ErrorIs(t, err, ErrExhausted)
}
