// Package pagemap is the OS mapping layer: it obtains and releases anonymous,
// private, read-write, page-aligned regions directly from the kernel. Every
// byte the allocator ever hands out ultimately originates from Map.
package pagemap

import "github.com/pageframe/pagealloc/internal/logging"

// Size is the assumed system page size in bytes. The allocator treats every
// nbytes it passes to Map/Unmap as a positive multiple of Size.
const Size = 4096

// RoundUp rounds nbytes up to the next multiple of Size. It never returns 0
// for a positive input.
func RoundUp(nbytes int) int {
	if nbytes <= 0 {
		return Size
	}
	pages := (nbytes + Size - 1) / Size
	return pages * Size
}

// log is the package-level diagnostic sink. It defaults to a no-op logger so
// pagemap has no observable behavior change until the owning process opts in
// via SetLogger.
var log = logging.Nop()

// SetLogger installs the logger used for the fatal "kernel refused a mapping"
// diagnostic. Called by pagealloc.Configure each time it runs.
func SetLogger(l *logging.Logger) {
	if l != nil {
		log = l
	}
}
