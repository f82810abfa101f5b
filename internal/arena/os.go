package arena

import (
	"runtime"

	"github.com/pageframe/pagealloc/internal/pagemap"
)

func releaseChunk(addr uintptr, size int64) {
	pagemap.Unmap(addr, int(size))
}

// goYield gives other goroutines a chance to release an arena mutex before
// Allocate starts its next lap around the ring. Plain Gosched rather than a
// timed sleep: contention is expected to be brief, and a lap only spins
// again after every arena has already refused a try-lock once.
func goYield() {
	runtime.Gosched()
}
