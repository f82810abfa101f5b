package arena

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/pageframe/pagealloc/internal/logging"
	"github.com/pageframe/pagealloc/internal/sizeclass"
)

// NumArenas is the fixed shard count. It is a compile time constant, not a
// tunable: the whole point of the design is that a small, fixed shard count
// is cheap to scan on every allocation.
const NumArenas = 4

var log = logging.Nop()

// SetLogger installs the logger this package reports chunk lifecycle events
// through. Called by pagealloc.Configure each time it runs.
func SetLogger(l *logging.Logger) {
	if l != nil {
		log = l
	}
}

// Arena is one shard: a mutex and one chunk ring per size class. Two arenas
// never touch each other's rings, so once a caller holds mu it can mutate
// its sentinels and chunks without any further coordination.
type Arena struct {
	mu        sync.Mutex
	idx       int32
	sentinels []uintptr
}

func newArena(idx int32) *Arena {
	a := &Arena{idx: idx, sentinels: make([]uintptr, len(sizeclass.Table))}
	for i := range sizeclass.Table {
		addr := newChunk(sizeclass.PageSize, int32(i), idx)
		headerAt(addr).occupancy = allOnes
		listInit(addr)
		a.sentinels[i] = addr
	}
	return a
}

// ActiveChunks reports how many chunks (excluding the sentinel) are
// currently mapped for a class. It exists for tests verifying the
// release-on-empty and no-premature-mapping invariants, not as a runtime
// statistics surface.
func (a *Arena) ActiveChunks(classIdx int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	sentinel := a.sentinels[classIdx]
	n := 0
	for cur := headerAt(sentinel).next; cur != sentinel; cur = headerAt(cur).next {
		n++
	}
	return n
}

func (a *Arena) allocateLocked(classIdx int32) unsafe.Pointer {
	class := sizeclass.Table[classIdx]
	sentinel := a.sentinels[classIdx]
	chunkAddr, needNew := findUsableChunk(sentinel)
	if needNew {
		chunkAddr = a.newChunkLocked(classIdx, class)
	}
	h := headerAt(chunkAddr)
	bit, ok := findFreeBit(h)
	if !ok {
		panic("pagealloc: chunk reported usable but has no free slot")
	}
	setBit(h, bit)
	slotAddr := SlotBase(chunkAddr) + uintptr(bit)*uintptr(class.SlotSize)
	WriteBackRef(slotAddr, chunkAddr)
	return PayloadPtr(slotAddr)
}

func (a *Arena) newChunkLocked(classIdx int32, class sizeclass.Class) uintptr {
	size := int(class.ChunkPages) * sizeclass.PageSize
	addr := newChunk(size, classIdx, a.idx)
	headerAt(addr).occupancy = class.Empty
	listInsertHead(a.sentinels[classIdx], addr)
	log.Debug("arena: chunk mapped", zap.Int32("arena", a.idx), zap.Int32("class", classIdx))
	return addr
}

func (a *Arena) freeLocked(chunkAddr, slotAddr uintptr) {
	h := headerAt(chunkAddr)
	class := sizeclass.Table[h.classID]
	bit := int32((slotAddr - SlotBase(chunkAddr)) / uintptr(class.SlotSize))
	clearBit(h, bit)
	if occupancyEquals(h, class.Empty) {
		listUnlink(chunkAddr)
		log.Debug("arena: chunk released", zap.Int32("arena", a.idx), zap.Int32("class", h.classID))
		releaseChunk(chunkAddr, h.size)
	}
}

var (
	initOnce sync.Once
	arenas   []*Arena
	affinity = sync.Pool{New: func() any { v := int32(0); return &v }}
)

func ensureInit() {
	initOnce.Do(func() {
		arenas = make([]*Arena, NumArenas)
		for i := range arenas {
			arenas[i] = newArena(int32(i))
		}
	})
}

// Allocate carves a slot from classIdx, spreading load across arenas by
// starting from a Pool-cached affinity hint and scanning round-robin with
// TryLock: the first arena that isn't currently busy wins. An allocating
// goroutine never blocks on a mutex: when every arena refuses, it yields and
// starts another lap, so contention degrades to spinning across shards
// rather than queuing behind one.
func Allocate(classIdx int) unsafe.Pointer {
	ensureInit()
	hint := affinity.Get().(*int32)
	n := int32(len(arenas))
	start := *hint % n
	for {
		for i := int32(0); i < n; i++ {
			cand := (start + i) % n
			if arenas[cand].mu.TryLock() {
				*hint = cand
				p := arenas[cand].allocateLocked(int32(classIdx))
				arenas[cand].mu.Unlock()
				affinity.Put(hint)
				return p
			}
		}
		goYield()
	}
}

// Free returns a bucketed slot to its owning arena. Unlike Allocate, the
// target arena isn't a choice: it is read from the chunk's back-reference,
// so Free always blocks on that specific arena's mutex rather than trying
// alternatives.
func Free(p unsafe.Pointer) {
	ensureInit()
	slotAddr := SlotAddrFromPayload(p)
	chunkAddr := ReadBackRef(slotAddr)
	idx := ChunkArenaIdx(chunkAddr)
	a := arenas[idx]
	a.mu.Lock()
	a.freeLocked(chunkAddr, slotAddr)
	a.mu.Unlock()
}
