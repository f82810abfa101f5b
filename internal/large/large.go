// Package large implements the pass-through path for requests too big for
// any size class: a dedicated mapping of the fewest whole pages that fit
// header, back reference, and payload, with no occupancy map and no list
// membership.
package large

import (
	"unsafe"

	"github.com/pageframe/pagealloc/internal/arena"
	"github.com/pageframe/pagealloc/internal/pagemap"
	"github.com/pageframe/pagealloc/internal/sizeclass"
)

// Allocate maps a chunk that holds exactly one slot of n bytes, rounded up
// to a whole number of pages.
func Allocate(n int) unsafe.Pointer {
	total := int(arena.HeaderSize) + sizeclass.BackRefSize + n
	mapped := pagemap.RoundUp(total)

	addr := pagemap.Map(mapped)
	arena.InitLargeHeader(addr, int64(mapped))

	slotAddr := arena.SlotBase(addr)
	arena.WriteBackRef(slotAddr, addr)
	return arena.PayloadPtr(slotAddr)
}

// Free releases the mapping backing a large allocation. There is no list to
// unlink and no occupancy bit to clear: the entire mapping is the slot.
func Free(p unsafe.Pointer) {
	chunkAddr := arena.ReadBackRef(arena.SlotAddrFromPayload(p))
	pagemap.Unmap(chunkAddr, int(arena.ChunkSize(chunkAddr)))
}

// Capacity returns the usable payload size of a large slot (mapped size
// minus header and back-reference), used by Reallocate's copy-min
// computation.
func Capacity(p unsafe.Pointer) int {
	chunkAddr := arena.ReadBackRef(arena.SlotAddrFromPayload(p))
	return int(arena.ChunkSize(chunkAddr)) - int(arena.HeaderSize) - sizeclass.BackRefSize
}
