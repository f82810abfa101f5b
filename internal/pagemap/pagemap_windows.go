//go:build windows

package pagemap

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// Map obtains a private, anonymous, read+write, page-aligned region of at
// least nbytes via VirtualAlloc. See the unix implementation for the shared
// contract and fatal-on-failure rationale.
func Map(nbytes int) uintptr {
	addr, err := windows.VirtualAlloc(0, uintptr(nbytes), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		log.Fatal("pagemap: VirtualAlloc failed", zap.Int("bytes", nbytes), zap.Error(err))
	}
	return addr
}

// Unmap releases the region starting at addr via VirtualFree(MEM_RELEASE).
// Windows requires the release call to pass size 0 when releasing an entire
// reservation; nbytes is accepted for symmetry with the unix implementation
// and is not used.
func Unmap(addr uintptr, nbytes int) {
	_ = nbytes
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		log.Fatal("pagemap: VirtualFree failed", zap.Uintptr("addr", addr), zap.Error(err))
	}
}
