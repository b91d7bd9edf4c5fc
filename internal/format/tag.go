package format

// A boundary tag is a single little-endian uint32 word packing a block's
// total size with its allocated bit. Every block carries one at each end
// (header and footer), encoding the same value; the duplication is what lets
// the allocator step to a predecessor block in O(1) and what the consistency
// checker exploits to detect overwrites.

// PackTag encodes a block size and allocated flag into a tag word.
// The size must be a multiple of DWordSize.
func PackTag(size int, allocated bool) uint32 {
	t := uint32(size) & SizeMask
	if allocated {
		t |= AllocBit
	}
	return t
}

// TagSize returns the block size encoded in a tag word.
func TagSize(t uint32) int {
	return int(t & SizeMask)
}

// TagAllocated reports whether a tag word marks its block allocated.
func TagAllocated(t uint32) bool {
	return t&AllocBit != 0
}
