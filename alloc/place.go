package alloc

import (
	"github.com/joshuapare/memkit/internal/format"
)

// bypassScan reports whether the adaptive heuristic should skip the free
// list for this adjusted size: the same size has already missed the scan
// more than MissLimit consecutive times, so another walk is almost
// certainly wasted work.
func (h *Heap) bypassScan(asize int) bool {
	return h.cfg.MissLimit > 0 &&
		asize == h.lastMissSize &&
		h.missCount > h.cfg.MissLimit
}

// findFit walks the free list first-fit and returns the first block large
// enough, or NullRef. Misses feed the adaptive counters: consecutive misses
// of one size arm bypassScan, any hit disarms it.
func (h *Heap) findFit(data []byte, asize int) Ref {
	for bp := h.freeHead; bp != NullRef; bp = nextFree(data, bp) {
		h.stats.ScanSteps++
		if blockSize(data, bp) >= asize {
			h.missCount = 0
			return bp
		}
	}

	if asize == h.lastMissSize {
		h.missCount++
	} else {
		h.lastMissSize = asize
		h.missCount = 1
	}
	return NullRef
}

// place carves an allocated block of asize bytes out of the free block at
// bp. The block leaves the free list first; if the remainder can stand
// alone as a free block it is split off and reinserted, otherwise the
// whole block is handed out.
func (h *Heap) place(data []byte, bp Ref, asize int) {
	csize := blockSize(data, bp)
	h.removeFree(data, bp)

	if csize-asize >= format.MinBlockSize {
		h.writeTags(data, bp, asize, true)
		rest := nextBlock(data, bp)
		h.writeTags(data, rest, csize-asize, false)
		h.insertFree(data, rest)
		h.stats.SplitCount++
		h.stats.BytesAllocated += int64(asize)
		debugLogf("place(%d): split block at %d (size %d), remainder %d at %d",
			asize, bp, csize, csize-asize, rest)
		return
	}

	h.writeTags(data, bp, csize, true)
	h.stats.BytesAllocated += int64(csize)
	debugLogf("place(%d): whole block at %d (size %d)", asize, bp, csize)
}
