// Package arena implements the size-class engine's chunk layer and its
// multi-arena concurrency model: chunk headers laid out directly in
// OS-mapped memory via an unsafe.Pointer byte-region overlay, a 256-bit
// occupancy bitmap per bucketed chunk, doubly-linked sentinel rings per size
// class, and a fixed pool of mutex-guarded arenas selected by round-robin
// TryLock.
package arena

import (
	"math/bits"
	"unsafe"

	"github.com/pageframe/pagealloc/internal/pagemap"
	"github.com/pageframe/pagealloc/internal/sizeclass"
)

// LargeClassID marks a chunk as a large, non-bucketed allocation. It is
// distinct from a per-class chunk *list's* sentinel head node, which uses a
// real class index and an all-ones occupancy pattern instead.
const LargeClassID int32 = -1

// HeaderSize is the actual in-memory size of chunkHeader. It must equal
// sizeclass.HeaderSize; TestChunkHeader_MatchesSizeclassBudget asserts this.
const HeaderSize = unsafe.Sizeof(chunkHeader{})

// chunkHeader sits at the very first byte of every mapping this package
// creates. classID is either an index into sizeclass.Table or LargeClassID.
// arenaIdx records which arena's mutex guards this chunk, so Free can
// recover the correct lock purely from the caller's pointer, without any
// separate registry. prev/next are raw addresses of neighboring chunks in
// the same per-class ring, not Go pointers. Nothing about this struct is
// ever referenced through the Go heap, so the garbage collector has nothing
// to lose track of.
type chunkHeader struct {
	size      int64
	classID   int32
	arenaIdx  int32
	occupancy [sizeclass.OccupancyBits / 64]uint64
	prev      uintptr
	next      uintptr
}

var allOnes = [sizeclass.OccupancyBits / 64]uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}

func headerAt(addr uintptr) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(addr)) //nolint:govet // raw OS-page overlay by design
}

// SlotBase returns the address immediately after a chunk's header, the
// start of its slot array (bucketed) or its single slot (large).
func SlotBase(chunkAddr uintptr) uintptr {
	return chunkAddr + HeaderSize
}

// PayloadPtr returns the caller-visible pointer for a slot, i.e. the byte
// immediately after the slot's back-reference word.
func PayloadPtr(slotAddr uintptr) unsafe.Pointer {
	return unsafe.Pointer(slotAddr + uintptr(sizeclass.BackRefSize))
}

// SlotAddrFromPayload inverts PayloadPtr: given a caller pointer, returns
// the address of the slot's back-reference word.
func SlotAddrFromPayload(p unsafe.Pointer) uintptr {
	return uintptr(p) - uintptr(sizeclass.BackRefSize)
}

// WriteBackRef stamps a slot's back-reference with its owning chunk's base
// address.
func WriteBackRef(slotAddr, chunkAddr uintptr) {
	*(*uintptr)(unsafe.Pointer(slotAddr)) = chunkAddr
}

// ReadBackRef reads the chunk address a slot was carved from.
func ReadBackRef(slotAddr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(slotAddr))
}

// ChunkSize returns the total bytes of the OS mapping backing a chunk (the
// value Unmap must be called with).
func ChunkSize(chunkAddr uintptr) int64 {
	return headerAt(chunkAddr).size
}

// ChunkClassID returns a chunk's class index, or LargeClassID.
func ChunkClassID(chunkAddr uintptr) int32 {
	return headerAt(chunkAddr).classID
}

// ChunkArenaIdx returns the arena index that guards a bucketed chunk.
// Meaningless (and unused) for large chunks.
func ChunkArenaIdx(chunkAddr uintptr) int32 {
	return headerAt(chunkAddr).arenaIdx
}

// ClassIDOf resolves a caller pointer straight to its owning chunk's class
// id, letting the dispatch layer decide between the bucketed and large free
// paths without knowing chunk layout itself.
func ClassIDOf(p unsafe.Pointer) int32 {
	return ChunkClassID(ReadBackRef(SlotAddrFromPayload(p)))
}

// CapacityOf returns a bucketed slot's usable capacity (slot size minus the
// back-reference word), used by Reallocate's copy-min computation.
func CapacityOf(p unsafe.Pointer) int {
	chunkAddr := ReadBackRef(SlotAddrFromPayload(p))
	class := sizeclass.Table[headerAt(chunkAddr).classID]
	return int(class.SlotSize) - sizeclass.BackRefSize
}

// InitLargeHeader initializes the header of a dedicated large-allocation
// mapping. Large chunks carry no occupancy map and no list membership, so
// only size and classID are meaningful.
func InitLargeHeader(chunkAddr uintptr, size int64) {
	h := headerAt(chunkAddr)
	h.size = size
	h.classID = LargeClassID
}

func isFull(h *chunkHeader) bool {
	return h.occupancy == allOnes
}

func occupancyEquals(h *chunkHeader, pattern [sizeclass.OccupancyBits / 64]uint64) bool {
	return h.occupancy == pattern
}

func setBit(h *chunkHeader, bit int32) {
	h.occupancy[bit/64] |= 1 << uint(bit%64)
}

func clearBit(h *chunkHeader, bit int32) {
	h.occupancy[bit/64] &^= 1 << uint(bit%64)
}

// findFreeBit returns the lowest 0-bit in the occupancy map, scanning
// 64-bit words from the least significant word upward, using the hardware
// bit-scan primitive math/bits.TrailingZeros64.
func findFreeBit(h *chunkHeader) (int32, bool) {
	for w := 0; w < len(h.occupancy); w++ {
		word := h.occupancy[w]
		if word == ^uint64(0) {
			continue
		}
		bit := bits.TrailingZeros64(^word)
		return int32(w*64 + bit), true
	}
	return 0, false
}

// newChunk maps a fresh chunk of nbytes and stamps its header. Occupancy is
// left at the zero value; callers fill it in (class.Empty for bucketed,
// left zero and unused for large).
func newChunk(nbytes int, classID, arenaIdx int32) uintptr {
	addr := pagemap.Map(nbytes)
	h := headerAt(addr)
	h.size = int64(nbytes)
	h.classID = classID
	h.arenaIdx = arenaIdx
	return addr
}
