package arena

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// imageMagic prefixes every uncompressed image payload.
var imageMagic = []byte("TAGHEAP1")

// imageHeaderSize is the magic plus a little-endian uint64 byte count.
const imageHeaderSize = 16

// WriteImage writes the bytes of a as a zstd-compressed image to w.
func WriteImage(w io.Writer, a Arena) error {
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderCRC(true),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	var hdr [imageHeaderSize]byte
	copy(hdr[:], imageMagic)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(a.Size()))

	if _, err := zw.Write(hdr[:]); err != nil {
		zw.Close()
		return fmt.Errorf("arena: write image header: %w", err)
	}
	if _, err := zw.Write(a.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("arena: write image: %w", err)
	}
	return zw.Close()
}

// ReadImage restores an image written by WriteImage into a new Memory arena
// that can grow up to max bytes. A non-positive max selects DefaultMaxHeap;
// an image larger than max is rejected.
func ReadImage(r io.Reader, max int) (*Memory, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var hdr [imageHeaderSize]byte
	if _, err := io.ReadFull(zr, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadImage, err)
	}
	if !bytes.Equal(hdr[:8], imageMagic) {
		return nil, fmt.Errorf("%w: magic %q", ErrBadImage, hdr[:8])
	}
	size := binary.LittleEndian.Uint64(hdr[8:])

	m := NewMemory(max)
	if size > uint64(m.Cap()) {
		return nil, fmt.Errorf("%w: image is %d bytes, max is %d", ErrExhausted, size, m.Cap())
	}
	if _, err := m.Grow(int(size)); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(zr, m.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrBadImage, err)
	}
	return m, nil
}
