package format

// WriteSentinels lays out an empty heap in the first SentinelSize bytes of b:
//
//	offset  0: root next link = 0
//	offset  4: root prev link = 0
//	offset  8: prologue footer = Pack(4, allocated)
//	offset 12: epilogue header = Pack(0, allocated)
//
// The root's payload offset is 0 and the first real block's payload starts
// at FirstBlockOffset, so the epilogue word becomes that block's header on
// the first growth.
func WriteSentinels(b []byte) error {
	if len(b) < SentinelSize {
		return ErrTruncated
	}
	PutU32(b, RootNextOffset, 0)
	PutU32(b, RootPrevOffset, 0)
	PutU32(b, PrologueFooterOffset, PrologueTag)
	PutU32(b, InitialEpilogueOffset, EpilogueTag)
	return nil
}

// EpilogueOffset returns the offset of the epilogue header for a heap whose
// arena is size bytes long.
func EpilogueOffset(size int) uint32 {
	return uint32(size - WordSize)
}

// TopPayload returns the payload offset the epilogue stands in for, i.e.
// where the next grown block's payload will begin.
func TopPayload(size int) uint32 {
	return uint32(size)
}
