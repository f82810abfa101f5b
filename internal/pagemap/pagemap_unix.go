//go:build linux || darwin

package pagemap

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Map obtains a private, anonymous, read+write, page-aligned region of at
// least nbytes, zero-filled by the kernel. nbytes must already be a positive
// multiple of Size. It never returns a failure to the caller: a refused
// mapping is treated as a fatal, unrecoverable program condition, so this
// logs a diagnostic and panics instead.
func Map(nbytes int) uintptr {
	b, err := unix.Mmap(-1, 0, nbytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		log.Fatal("pagemap: mmap failed", zap.Int("bytes", nbytes), zap.Error(err))
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// Unmap releases the region starting at addr. nbytes must equal the nbytes
// passed to the Map call that produced addr.
func Unmap(addr uintptr, nbytes int) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), nbytes)
	if err := unix.Munmap(b); err != nil {
		log.Fatal("pagemap: munmap failed", zap.Uintptr("addr", addr), zap.Int("bytes", nbytes), zap.Error(err))
	}
}
