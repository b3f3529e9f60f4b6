//go:build linux

package dirty

import "golang.org/x/sys/unix"

// msync flushes a memory region to disk.
//
// On Linux msync accepts any page-aligned sub-slice of a mapping.
func msync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync syncs file data. fullfsync has no stronger variant on Linux.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
