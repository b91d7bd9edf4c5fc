// Package format defines the on-image layout of a memkit heap: boundary-tag
// packing, free-list link words, alignment rules, and the fixed prefix every
// well-formed image starts with. The goal is to keep the byte-level encoding
// in one place so higher-level packages can work in terms of offsets and
// sizes rather than raw buffer arithmetic.
package format

var (
	// Signature is the four-byte magic stored in the image's pad word.
	// Layout (little-endian):
	//   0x00  'm' 'e' 'm' 'k'
	Signature = []byte{'m', 'e', 'm', 'k'}
)

const (
	// WordSize is the size of one tag word in bytes.
	WordSize = 4

	// DWordSize is the alignment granularity. Every block size and every
	// payload offset is a multiple of this.
	DWordSize = 8

	// TagOverhead is the per-block metadata cost: one header plus one
	// footer, each a single tag word.
	TagOverhead = 2 * WordSize

	// LinkSize is the size of one free-list link word. Free blocks store two
	// of these (next, prev) at the start of their payload.
	LinkSize = 8

	// MinBlockSize is the smallest legal block: two tags plus two links.
	// Anything smaller could not be threaded onto the free list once freed.
	MinBlockSize = TagOverhead + 2*LinkSize

	// PadOffset is the offset of the alignment pad word, which doubles as
	// the signature slot.
	PadOffset = 0

	// PrologueHeaderOffset and PrologueFooterOffset locate the prologue, a
	// permanently allocated tag-only block that terminates backward
	// traversal and coalescing.
	PrologueHeaderOffset = WordSize
	PrologueFooterOffset = 2 * WordSize

	// PrologueSize is the prologue's encoded block size.
	PrologueSize = TagOverhead

	// PrefixSize is the size of the fixed image prefix: pad word, prologue
	// header, prologue footer, and the initial epilogue header. The first
	// real block's payload begins here once the heap has grown.
	PrefixSize = 4 * WordSize

	// AlignMask is DWordSize-1, used to round sizes up to the granularity.
	AlignMask = DWordSize - 1

	// SizeMask extracts the block size from a tag. The low three bits of a
	// size are always zero, freeing them for flags.
	SizeMask = ^uint32(AlignMask)

	// AllocBit marks a tag's block as allocated.
	AllocBit = uint32(1)

	// PageSize is the assumed OS page size, used when rounding dirty byte
	// ranges for flushing.
	PageSize = 4096

	// PageMask is PageSize-1.
	PageMask = PageSize - 1
)
