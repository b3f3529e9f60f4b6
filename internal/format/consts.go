// Package format houses the low-level layout of a tagheap arena: word sizes,
// boundary-tag encoding, and the fixed offsets of the prologue and epilogue
// sentinels. Every other package reads and writes tag words through here so
// the bit layout lives in exactly one place.
package format

const (
	// WordSize is the size of a header or footer tag word, and of one
	// free-list link stored in a free block's payload.
	WordSize = 4

	// DoubleSize is a double word. Payloads are DoubleSize-aligned and every
	// block carries DoubleSize bytes of header+footer overhead.
	DoubleSize = 8

	// Alignment is the payload and block-size alignment.
	Alignment = 8

	// AlignmentMask is used to round sizes up to Alignment.
	AlignmentMask = Alignment - 1

	// MinBlockSize is the smallest legal block: header, two link words, footer.
	MinBlockSize = 16

	// ChunkSize is the default growth increment when no free block fits.
	ChunkSize = 1 << 12

	// Overhead is the number of bytes a block spends on boundary tags.
	Overhead = DoubleSize

	// MaxBlockSize is the largest size a tag word can carry. Offsets are
	// uint32 and the low three bits of a tag hold flags.
	MaxBlockSize = 0xFFFFFFF8
)

const (
	// AllocBit marks a tag word as allocated.
	AllocBit = 0x1

	// SizeMask extracts the size from a tag word.
	SizeMask = ^uint32(AlignmentMask)
)

const (
	// RootNextOffset is the root's next-free link (prologue word 0).
	RootNextOffset = 0

	// RootPrevOffset is the root's prev-free link (prologue word 1). It is
	// always zero and never followed.
	RootPrevOffset = WordSize

	// PrologueFooterOffset is the prologue footer word (prologue word 2).
	PrologueFooterOffset = 2 * WordSize

	// InitialEpilogueOffset is where the epilogue header lives before the
	// first growth.
	InitialEpilogueOffset = 3 * WordSize

	// SentinelSize is the number of bytes init requests for the prologue
	// plus the initial epilogue.
	SentinelSize = 4 * WordSize

	// FirstBlockOffset is the payload offset of the first real block.
	FirstBlockOffset = SentinelSize

	// RootOffset is the payload offset of the free-list root. A next link of
	// RootOffset terminates the list; a prev link of RootOffset points at
	// the root itself.
	RootOffset = 0

	// PrologueTag is the tag stored in the prologue footer.
	PrologueTag = WordSize | AllocBit

	// EpilogueTag is the zero-size allocated tag that marks the top of the heap.
	EpilogueTag = AllocBit
)
