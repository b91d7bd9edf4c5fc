package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/format"
)

// BlockInfo describes one block in the chain, as reported by Blocks.
type BlockInfo struct {
	Ref       Ref  // payload offset
	Size      int  // total block size including tags
	Allocated bool // current state
}

// Blocks walks the block chain from the first real block to the epilogue
// and reports every block in address order. The walk fails with ErrBadImage
// on a chain it cannot follow; use Check for full diagnostics.
func (h *Heap) Blocks() ([]BlockInfo, error) {
	data := h.currentBytes()
	if len(data) < format.PrefixSize {
		return nil, nil
	}

	var out []BlockInfo
	bp := Ref(format.PrefixSize)
	for {
		if headerOff(bp) >= len(data) {
			return nil, fmt.Errorf("%w: block chain runs past the region end", ErrBadImage)
		}
		size := blockSize(data, bp)
		if size == 0 {
			return out, nil // epilogue
		}
		if size < format.MinBlockSize || size%format.DWordSize != 0 {
			return nil, fmt.Errorf("%w: block at %d has size %d", ErrBadImage, bp, size)
		}
		out = append(out, BlockInfo{Ref: bp, Size: size, Allocated: blockAllocated(data, bp)})
		bp = nextBlock(data, bp)
	}
}
