package format

// Align8 returns n aligned up to the next 8-byte boundary.
// Used for block sizes, which must be multiples of Alignment.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// EvenWords rounds a word count up to an even number of words so that a
// growth keeps the break DoubleSize-aligned.
//
// Example:
//
//	EvenWords(3) = 4
//	EvenWords(4) = 4
func EvenWords(words int) int {
	if words%2 != 0 {
		return words + 1
	}
	return words
}

// AdjustedSize maps a requested payload size to the block size that serves
// it: at least MinBlockSize, otherwise the 8-aligned payload plus tag
// overhead. ok is false when the block would not fit in a tag word.
//
// Example:
//
//	AdjustedSize(1)   = 16
//	AdjustedSize(8)   = 16
//	AdjustedSize(9)   = 24
//	AdjustedSize(100) = 112
func AdjustedSize(n int) (uint32, bool) {
	if n <= MinBlockSize-DoubleSize {
		return MinBlockSize, true
	}
	if uint64(n) > MaxBlockSize-Overhead {
		return 0, false
	}
	return uint32(Align8(n) + Overhead), true
}

// IsAligned reports whether off is DoubleSize-aligned.
func IsAligned(off uint32) bool {
	return off&AlignmentMask == 0
}
