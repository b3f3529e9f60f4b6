package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/alloc"
)

// zstdMagic starts every frame written by arena.WriteImage.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// openedHeap is a heap loaded from disk for inspection.
type openedHeap struct {
	Heap *alloc.Heap
	Kind string // "image" or "file"
	Path string

	closer io.Closer
}

func (o *openedHeap) Close() error {
	return o.closer.Close()
}

// openHeap loads the heap at path. Compressed images are restored into
// memory; anything else is mapped as a file arena, which locks it.
// The heap is validated on the way in.
func openHeap(path string, s settings) (*openedHeap, error) {
	image, err := isImage(path)
	if err != nil {
		return nil, err
	}

	if image {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		m, err := arena.ReadImage(f, s.MaxHeap)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		h, err := alloc.Open(m, s.heapConfig())
		if err != nil {
			m.Close()
			return nil, err
		}
		return &openedHeap{Heap: h, Kind: "image", Path: path, closer: m}, nil
	}

	a, err := arena.OpenFile(path, s.MaxHeap)
	if err != nil {
		return nil, fmt.Errorf("failed to open heap file %s: %w", path, err)
	}
	h, err := alloc.Open(a, s.heapConfig())
	if err != nil {
		a.Close()
		return nil, err
	}
	return &openedHeap{Heap: h, Kind: "file", Path: path, closer: a}, nil
}

func isImage(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var head [4]byte
	n, err := io.ReadFull(f, head[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(head[:n], zstdMagic), nil
}
