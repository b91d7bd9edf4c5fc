package alloc

import (
	"github.com/joshuapare/memkit/internal/format"
)

// Ref is a block reference: the offset of the block's payload from the
// start of the region. Refs are stable across region growth.
type Ref int

// NullRef is the zero reference. Offset 0 is the image's pad word, so no
// real payload can ever live there.
const NullRef Ref = 0

// The accessor layer below is the only code that turns a Ref into tag and
// neighbor offsets. Keeping the arithmetic in one place keeps the layout
// rules (header one word before the payload, footer one word inside the
// block's end) out of the allocation logic.

// headerOff returns the offset of the block's header tag.
func headerOff(bp Ref) int {
	return int(bp) - format.WordSize
}

// blockSize returns the block's total size, including both tags.
func blockSize(data []byte, bp Ref) int {
	return format.TagSize(format.ReadU32(data, headerOff(bp)))
}

// blockAllocated reports whether the block is marked allocated.
func blockAllocated(data []byte, bp Ref) bool {
	return format.TagAllocated(format.ReadU32(data, headerOff(bp)))
}

// footerOff returns the offset of the block's footer tag, derived from the
// size currently in its header.
func footerOff(data []byte, bp Ref) int {
	return int(bp) + blockSize(data, bp) - format.TagOverhead
}

// nextBlock returns the payload offset of the physically next block.
func nextBlock(data []byte, bp Ref) Ref {
	return bp + Ref(blockSize(data, bp))
}

// prevBlock returns the payload offset of the physically previous block,
// read from the footer that precedes this block's header.
func prevBlock(data []byte, bp Ref) Ref {
	return bp - Ref(format.TagSize(format.ReadU32(data, int(bp)-format.TagOverhead)))
}

// writeTags stamps both boundary tags of the block at bp. The footer
// position follows from the size being written, so callers must pass the
// block's final size.
func (h *Heap) writeTags(data []byte, bp Ref, size int, allocated bool) {
	tag := format.PackTag(size, allocated)
	hdr := headerOff(bp)
	ftr := int(bp) + size - format.TagOverhead
	format.PutU32(data, hdr, tag)
	format.PutU32(data, ftr, tag)
	h.mark(hdr, format.WordSize)
	h.mark(ftr, format.WordSize)
}

// writeEpilogue stamps a zero-size allocated header at off, marking the
// current end of the block chain.
func (h *Heap) writeEpilogue(data []byte, off int) {
	format.PutU32(data, off, format.PackTag(0, true))
	h.mark(off, format.WordSize)
}

// validRef reports whether ref plausibly names an allocated block: in
// bounds, payload-aligned, marked allocated, with a sane size and matching
// tags. This is a best-effort screen for Free/Realloc/Payload, not a full
// consistency check.
func validRef(data []byte, ref Ref) bool {
	if ref < format.PrefixSize || int(ref)%format.DWordSize != 0 {
		return false
	}
	if int(ref) >= len(data) {
		return false
	}
	hdr := format.ReadU32(data, headerOff(ref))
	size := format.TagSize(hdr)
	if size < format.MinBlockSize || size%format.DWordSize != 0 {
		return false
	}
	end := int(ref) + size - format.TagOverhead
	if end+format.WordSize > len(data) {
		return false
	}
	if !format.TagAllocated(hdr) {
		return false
	}
	return format.ReadU32(data, end) == hdr
}
