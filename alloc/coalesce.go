package alloc

// coalesce merges the free block at bp with whichever physical neighbors
// are free and threads the result onto the free list. The tags at bp must
// already be marked free.
//
// The prologue and epilogue sentinels are permanently allocated, so the
// neighbor probes need no bounds special-casing. A block never merges with
// itself: the guard covers a preceding tag that would make prevBlock
// degenerate (a zero-size footer can only appear through corruption, but
// self-merge would loop, so it is excluded outright).
//
// Exactly one list insertion happens per call, whatever the case, keeping
// "every free block is on the list exactly once" trivially true.
func (h *Heap) coalesce(data []byte, bp Ref) Ref {
	prev := prevBlock(data, bp)
	next := nextBlock(data, bp)

	prevAlloc := prev == bp || blockAllocated(data, prev)
	nextAlloc := blockAllocated(data, next)
	size := blockSize(data, bp)

	switch {
	case prevAlloc && nextAlloc:
		// Case 1: neither neighbor is free.

	case prevAlloc && !nextAlloc:
		// Case 2: absorb the successor.
		h.removeFree(data, next)
		size += blockSize(data, next)
		h.writeTags(data, bp, size, false)
		h.stats.CoalesceForward++

	case !prevAlloc && nextAlloc:
		// Case 3: the predecessor absorbs this block.
		h.removeFree(data, prev)
		size += blockSize(data, prev)
		bp = prev
		h.writeTags(data, bp, size, false)
		h.stats.CoalesceBackward++

	default:
		// Case 4: both neighbors fold into the predecessor's footprint.
		h.removeFree(data, prev)
		h.removeFree(data, next)
		size += blockSize(data, prev) + blockSize(data, next)
		bp = prev
		h.writeTags(data, bp, size, false)
		h.stats.CoalesceForward++
		h.stats.CoalesceBackward++
	}

	h.insertFree(data, bp)
	return bp
}
