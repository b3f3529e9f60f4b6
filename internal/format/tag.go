package format

// Boundary tags.
//
// Every block starts with a header word and ends with a footer word holding
// the same value:
//
//	bit 31..3  block size (multiple of 8, header and footer included)
//	bit 2..1   reserved, zero
//	bit 0      allocated
//
// A block is addressed by its payload offset bp. The header lives one word
// below bp and the footer one double word below the next block's payload:
//
//	 bp-4      bp                         bp+size-8   bp+size-4
//	| header | payload ...               | footer    | next header ...
//
// While a block is free the first two payload words hold the next and prev
// free-list links.

// Pack combines a block size and allocation flag into a tag word.
func Pack(size uint32, allocated bool) uint32 {
	if allocated {
		return size | AllocBit
	}
	return size
}

// TagSize extracts the block size from a tag word.
func TagSize(tag uint32) uint32 { return tag & SizeMask }

// TagAllocated extracts the allocation flag from a tag word.
func TagAllocated(tag uint32) bool { return tag&AllocBit != 0 }

// HeaderOffset returns the offset of the header word of the block at bp.
func HeaderOffset(bp uint32) uint32 { return bp - WordSize }

// FooterOffset returns the offset of the footer word of the block at bp.
func FooterOffset(bp, size uint32) uint32 { return bp + size - DoubleSize }

// PrevFooterOffset returns the offset of the footer of the block that
// physically precedes bp. For the first block this is the prologue footer.
func PrevFooterOffset(bp uint32) uint32 { return bp - DoubleSize }

// NextFreeOffset returns where the next-free link of a free block is stored.
func NextFreeOffset(bp uint32) uint32 { return bp }

// PrevFreeOffset returns where the prev-free link of a free block is stored.
func PrevFreeOffset(bp uint32) uint32 { return bp + WordSize }

// ReadTag decodes the tag word at off.
func ReadTag(b []byte, off uint32) (size uint32, allocated bool) {
	tag := ReadU32(b, int(off))
	return TagSize(tag), TagAllocated(tag)
}

// ReadHeader decodes the header of the block at bp.
func ReadHeader(b []byte, bp uint32) (size uint32, allocated bool) {
	return ReadTag(b, HeaderOffset(bp))
}

// WriteTags writes identical header and footer words for the block at bp.
// The footer position is derived from size, so callers resizing a block
// must pass the new size.
func WriteTags(b []byte, bp, size uint32, allocated bool) {
	tag := Pack(size, allocated)
	PutU32(b, int(HeaderOffset(bp)), tag)
	PutU32(b, int(FooterOffset(bp, size)), tag)
}

// WriteEpilogue writes the zero-size allocated header that terminates the
// block chain at bp (the payload offset one past the last real block).
func WriteEpilogue(b []byte, bp uint32) {
	PutU32(b, int(HeaderOffset(bp)), EpilogueTag)
}

// ReadLink reads a free-list link word.
func ReadLink(b []byte, off uint32) uint32 { return ReadU32(b, int(off)) }

// WriteLink writes a free-list link word.
func WriteLink(b []byte, off, v uint32) { PutU32(b, int(off), v) }
