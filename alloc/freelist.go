package alloc

import (
	"github.com/joshuapare/memkit/internal/format"
)

// The free list is intrusive: a free block's first two payload words hold
// the successor and predecessor references, valid only while the block is
// free. insertFree and removeFree are the only mutators; everything else
// (placement, coalescing, rebuild) goes through them so the doubly-linked
// invariants hold at every step.

// nextFreeOff and prevFreeOff locate the two link words in a free payload.
func nextFreeOff(bp Ref) int { return int(bp) }
func prevFreeOff(bp Ref) int { return int(bp) + format.LinkSize }

// nextFree returns the successor link of a free block.
func nextFree(data []byte, bp Ref) Ref {
	return Ref(format.ReadU64(data, nextFreeOff(bp)))
}

// prevFree returns the predecessor link of a free block.
func prevFree(data []byte, bp Ref) Ref {
	return Ref(format.ReadU64(data, prevFreeOff(bp)))
}

func (h *Heap) setNextFree(data []byte, bp, to Ref) {
	format.PutU64(data, nextFreeOff(bp), uint64(to))
	h.mark(nextFreeOff(bp), format.LinkSize)
}

func (h *Heap) setPrevFree(data []byte, bp, to Ref) {
	format.PutU64(data, prevFreeOff(bp), uint64(to))
	h.mark(prevFreeOff(bp), format.LinkSize)
}

// insertFree threads bp onto the head of the free list
// (most-recently-freed-first order).
func (h *Heap) insertFree(data []byte, bp Ref) {
	h.setNextFree(data, bp, h.freeHead)
	h.setPrevFree(data, bp, NullRef)
	if h.freeHead != NullRef {
		h.setPrevFree(data, h.freeHead, bp)
	}
	h.freeHead = bp
}

// removeFree splices bp out of the free list. A block with no predecessor
// link is the head, so the head advances.
func (h *Heap) removeFree(data []byte, bp Ref) {
	prev := prevFree(data, bp)
	next := nextFree(data, bp)

	if prev != NullRef {
		h.setNextFree(data, prev, next)
	} else {
		h.freeHead = next
	}
	if next != NullRef {
		h.setPrevFree(data, next, prev)
	}
}
