package arena

// Each size class owns a doubly-linked ring of chunk addresses with a
// permanent sentinel head. The sentinel's occupancy is pinned to all-ones so
// isFull naturally treats it as "nothing to allocate here", which lets
// findUsableChunk's scan stop the instant it wraps back around without a
// separate end-of-list check.

func listInit(addr uintptr) {
	h := headerAt(addr)
	h.prev = addr
	h.next = addr
}

func listInsertHead(sentinel, chunkAddr uintptr) {
	hs := headerAt(sentinel)
	first := hs.next
	hc := headerAt(chunkAddr)
	hc.next = first
	hc.prev = sentinel
	headerAt(first).prev = chunkAddr
	hs.next = chunkAddr
}

func listUnlink(addr uintptr) {
	h := headerAt(addr)
	headerAt(h.prev).next = h.next
	headerAt(h.next).prev = h.prev
	h.prev = 0
	h.next = 0
}

// findUsableChunk walks a class's ring looking for the first chunk with at
// least one free slot. It returns (sentinel, true) if the ring holds no such
// chunk, signaling the caller must map a new one.
func findUsableChunk(sentinel uintptr) (uintptr, bool) {
	cur := headerAt(sentinel).next
	for cur != sentinel {
		if !isFull(headerAt(cur)) {
			return cur, false
		}
		cur = headerAt(cur).next
	}
	return sentinel, true
}
