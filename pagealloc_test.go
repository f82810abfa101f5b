package pagealloc

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFree_SmallBlockWriteReadCycle(t *testing.T) {
	for i := 0; i < 10000; i++ {
		p := Allocate(16)
		require.NotNil(t, p)
		b := unsafe.Slice((*byte)(p), 16)
		b[0], b[15] = 0x11, 0x22
		assert.Equal(t, byte(0x11), b[0])
		assert.Equal(t, byte(0x22), b[15])
		Free(p)
	}
}

func TestAllocate_ManySmallBlocksDoNotOverlap(t *testing.T) {
	const n = 10000
	ptrs := make([]unsafe.Pointer, n)
	for i := range ptrs {
		ptrs[i] = Allocate(24)
		unsafe.Slice((*byte)(ptrs[i]), 24)[0] = byte(i)
	}
	for i, p := range ptrs {
		assert.Equal(t, byte(i), unsafe.Slice((*byte)(p), 24)[0])
	}
	for _, p := range ptrs {
		Free(p)
	}
}

func TestAllocate_InterleavedFreeThenReallocateKeepsWorking(t *testing.T) {
	const n = 1000
	ptrs := make([]unsafe.Pointer, n)
	for i := range ptrs {
		ptrs[i] = Allocate(24)
	}
	for i := 0; i < n; i += 2 {
		Free(ptrs[i])
		ptrs[i] = nil
	}
	// Chunk mapping is not observable through the public API, so this only
	// checks that the allocator keeps working once slots are interleaved
	// freed and re-allocated; whether the freed slots are reused before a new
	// chunk is mapped is not asserted here.
	for i := 0; i < n/2; i++ {
		p := Allocate(24)
		require.NotNil(t, p)
	}
	for _, p := range ptrs {
		if p != nil {
			Free(p)
		}
	}
}

func TestAllocateFree_LargeBlockWriteReadCycle(t *testing.T) {
	const size = 1 << 20
	p := Allocate(size)
	require.NotNil(t, p)
	b := unsafe.Slice((*byte)(p), size)
	b[0], b[size-1] = 0xAA, 0xBB
	assert.Equal(t, byte(0xAA), b[0])
	assert.Equal(t, byte(0xBB), b[size-1])
	Free(p)
}

func TestReallocate_GrowPreservesLeadingBytes(t *testing.T) {
	p := Allocate(24)
	copy(unsafe.Slice((*byte)(p), 6), []byte("hello\x00"))

	p2 := Reallocate(p, 64)
	require.NotNil(t, p2)
	assert.Equal(t, []byte("hello\x00"), unsafe.Slice((*byte)(p2), 6))
	Free(p2)
}

func TestReallocate_NilActsAsAllocate(t *testing.T) {
	p := Reallocate(nil, 32)
	require.NotNil(t, p)
	Free(p)
}

func TestReallocate_ZeroActsAsFree(t *testing.T) {
	p := Allocate(32)
	assert.Nil(t, Reallocate(p, 0))
}

func TestReallocate_RepeatedCycleNeverCorrupts(t *testing.T) {
	p := Allocate(16)
	unsafe.Slice((*byte)(p), 16)[0] = 0x42
	for i := 0; i < 10000; i++ {
		p = Reallocate(p, 16)
	}
	assert.Equal(t, byte(0x42), unsafe.Slice((*byte)(p), 16)[0])
	Free(p)
}

func TestMixedConcurrentWorkload_LiveBytesReturnToZero(t *testing.T) {
	sizes := []int{16, 24, 40, 64, 500, 1000}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			live := make([]unsafe.Pointer, 0, 32)
			for i := 0; i < 100000; i++ {
				s := sizes[(seed+i)%len(sizes)]
				switch i % 3 {
				case 0:
					live = append(live, Allocate(s))
				case 1:
					if len(live) > 0 {
						Free(live[len(live)-1])
						live = live[:len(live)-1]
					}
				default:
					if len(live) > 0 {
						live[0] = Reallocate(live[0], s)
					}
				}
			}
			for _, p := range live {
				Free(p)
			}
		}(g)
	}
	wg.Wait()
}
