// Package pagealloc is a general-purpose dynamic memory allocator: OS pages
// mapped directly through the kernel, small requests bucketed into
// size-classed slots shared across a fixed pool of arenas, and large
// requests routed to dedicated mappings. Memory returned by Allocate is not
// tracked by the Go garbage collector; callers own it exactly as they would
// memory from C's malloc, and must pass it to Free exactly once.
package pagealloc

import (
	"unsafe"

	"github.com/pageframe/pagealloc/internal/arena"
	"github.com/pageframe/pagealloc/internal/large"
	"github.com/pageframe/pagealloc/internal/pagemap"
	"github.com/pageframe/pagealloc/internal/sizeclass"
)

// Allocate returns a pointer to at least n bytes of page-backed memory. The
// contents are not cleared: a reused slot still holds whatever its previous
// owner wrote. n must be non-negative. Requests that fit within the largest size
// class (after accounting for the hidden back-reference word) are served
// from an arena; everything else gets a dedicated mapping.
func Allocate(n int) unsafe.Pointer {
	if n < 0 {
		panic("pagealloc: negative size")
	}
	classIdx := classIndexFor(n)
	if classIdx == sizeclass.None {
		return large.Allocate(n)
	}
	return arena.Allocate(classIdx)
}

// Free returns memory obtained from Allocate or Reallocate. Freeing nil is a
// no-op; freeing anything else is undefined once it has already been freed.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if arena.ClassIDOf(p) == arena.LargeClassID {
		large.Free(p)
	} else {
		arena.Free(p)
	}
}

// Reallocate resizes an allocation, preserving the lesser of its old and new
// sizes' worth of leading bytes. Reallocate(nil, n) behaves as Allocate(n);
// Reallocate(p, 0) behaves as Free(p) and returns nil. Unlike some C
// allocators, this implementation never grows or shrinks in place. A
// bucketed slot's usable size is fixed by its class, so satisfying a larger
// request always means moving to a new slot or mapping.
func Reallocate(p unsafe.Pointer, n int) unsafe.Pointer {
	if p == nil {
		return Allocate(n)
	}
	if n == 0 {
		Free(p)
		return nil
	}

	var oldCapacity int
	isLarge := arena.ClassIDOf(p) == arena.LargeClassID
	if isLarge {
		oldCapacity = large.Capacity(p)
	} else {
		oldCapacity = arena.CapacityOf(p)
	}

	newP := Allocate(n)
	toCopy := n
	if oldCapacity < toCopy {
		toCopy = oldCapacity
	}
	if toCopy > 0 {
		src := unsafe.Slice((*byte)(p), toCopy)
		dst := unsafe.Slice((*byte)(newP), toCopy)
		copy(dst, src)
	}
	Free(p)
	return newP
}

// classIndexFor adds the back-reference overhead to n and looks up the
// owning size class, staying in 64-bit arithmetic so a pathologically large
// n can never wrap an int32 into a false match.
func classIndexFor(n int) int {
	s := int64(n) + int64(sizeclass.BackRefSize)
	largest := int64(sizeclass.Table[len(sizeclass.Table)-1].SlotSize)
	if s > largest {
		return sizeclass.None
	}
	return sizeclass.ClassFor(int32(s))
}

// wirePagemapAndArenaLogging is called from Configure so the OS mapping and
// arena layers report chunk lifecycle events through the same logger the
// rest of the process uses.
func wirePagemapAndArenaLogging() {
	l := currentLogger()
	pagemap.SetLogger(l)
	arena.SetLogger(l)
}
