package alloc

import (
	"fmt"
	"os"

	"github.com/joshuapare/memkit/internal/format"
)

// CheckError describes a consistency violation found by Check. Violations
// come from corruption (or allocator bugs), never from correct use, so a
// non-nil Check result means the image can no longer be trusted.
type CheckError struct {
	Kind    string // short machine-readable category, e.g. "tag-mismatch"
	Message string
	Offset  int // image offset of the offending block, -1 when global
}

func (e *CheckError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("alloc: %s at offset 0x%X: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("alloc: %s: %s", e.Kind, e.Message)
}

// Check walks the whole image and validates every structural invariant:
// prefix and sentinels, per-block bounds, alignment and tag agreement, no
// adjacent free blocks, free-list link integrity, and agreement between the
// number of free blocks seen by the chain walk and by the list walk.
//
// verbose >= 1 prints a block map to stderr, verbose >= 2 also prints the
// free-list walk. Check is diagnostic only and never mutates the heap.
func (h *Heap) Check(verbose int) error {
	data := h.currentBytes()
	if len(data) == 0 && !h.initialized {
		return nil // nothing laid down yet
	}
	if len(data) < format.PrefixSize+format.WordSize {
		// Smaller than prefix plus epilogue: only the bare prefix form is
		// legal, where the epilogue is the prefix's last word.
		if len(data) != format.PrefixSize {
			return &CheckError{Kind: "truncated", Offset: -1,
				Message: fmt.Sprintf("image of %d bytes cannot hold a heap", len(data))}
		}
	}

	if err := format.CheckSignature(data); err != nil {
		return &CheckError{Kind: "bad-signature", Offset: format.PadOffset,
			Message: err.Error()}
	}

	prologue := format.PackTag(format.PrologueSize, true)
	if format.ReadU32(data, format.PrologueHeaderOffset) != prologue ||
		format.ReadU32(data, format.PrologueFooterOffset) != prologue {
		return &CheckError{Kind: "bad-prologue", Offset: format.PrologueHeaderOffset,
			Message: "prologue tags are not a minimum-size allocated block"}
	}

	if verbose >= 1 {
		fmt.Fprintf(os.Stderr, "heap check: region %d bytes, free head 0x%X\n",
			len(data), int(h.freeHead))
	}

	heapFree, err := h.checkChain(data, verbose)
	if err != nil {
		return err
	}

	listFree, err := h.checkFreeList(data, heapFree, verbose)
	if err != nil {
		return err
	}

	if heapFree != listFree {
		return &CheckError{Kind: "free-count-mismatch", Offset: -1,
			Message: fmt.Sprintf("chain walk found %d free blocks, list walk found %d",
				heapFree, listFree)}
	}
	return nil
}

// checkChain walks every block from the first payload to the epilogue and
// returns the number of free blocks seen.
func (h *Heap) checkChain(data []byte, verbose int) (int, error) {
	free := 0
	prevWasFree := false

	bp := Ref(format.PrefixSize)
	for {
		hdrOff := headerOff(bp)
		if hdrOff+format.WordSize > len(data) {
			return 0, &CheckError{Kind: "chain-overrun", Offset: int(bp),
				Message: "block chain runs past the region end"}
		}

		hdr := format.ReadU32(data, hdrOff)
		size := format.TagSize(hdr)

		if size == 0 {
			// Epilogue: must be allocated and must be the last word.
			if !format.TagAllocated(hdr) {
				return 0, &CheckError{Kind: "bad-epilogue", Offset: int(bp),
					Message: "epilogue not marked allocated"}
			}
			if hdrOff != len(data)-format.WordSize {
				return 0, &CheckError{Kind: "bad-epilogue", Offset: int(bp),
					Message: fmt.Sprintf("zero-size block at 0x%X before the region end", hdrOff)}
			}
			if verbose >= 1 {
				fmt.Fprintf(os.Stderr, "  [0x%06X] epilogue\n", hdrOff)
			}
			return free, nil
		}

		if int(bp)%format.DWordSize != 0 {
			return 0, &CheckError{Kind: "misaligned", Offset: int(bp),
				Message: "payload offset not double-word aligned"}
		}
		if size < format.MinBlockSize || size%format.DWordSize != 0 {
			return 0, &CheckError{Kind: "bad-size", Offset: int(bp),
				Message: fmt.Sprintf("block size %d is undersized or unaligned", size)}
		}
		ftrOff := int(bp) + size - format.TagOverhead
		if ftrOff+format.WordSize > len(data) {
			return 0, &CheckError{Kind: "out-of-bounds", Offset: int(bp),
				Message: fmt.Sprintf("block of size %d overruns the region", size)}
		}
		if ftr := format.ReadU32(data, ftrOff); ftr != hdr {
			return 0, &CheckError{Kind: "tag-mismatch", Offset: int(bp),
				Message: fmt.Sprintf("header 0x%08X != footer 0x%08X", hdr, ftr)}
		}

		isFree := !format.TagAllocated(hdr)
		if isFree {
			free++
			if prevWasFree {
				return 0, &CheckError{Kind: "adjacent-free", Offset: int(bp),
					Message: "two adjacent free blocks escaped coalescing"}
			}
		}
		if verbose >= 1 {
			state := "alloc"
			if isFree {
				state = "free "
			}
			fmt.Fprintf(os.Stderr, "  [0x%06X] size=%-8d %s\n", int(bp), size, state)
		}

		prevWasFree = isFree
		bp = nextBlock(data, bp)
	}
}

// checkFreeList walks the free list and returns the node count. heapFree
// bounds the walk so a link cycle cannot hang the checker.
func (h *Heap) checkFreeList(data []byte, heapFree, verbose int) (int, error) {
	count := 0
	prev := NullRef

	for bp := h.freeHead; bp != NullRef; bp = nextFree(data, bp) {
		if count > heapFree {
			return 0, &CheckError{Kind: "list-cycle", Offset: int(bp),
				Message: fmt.Sprintf("free list longer than the %d free blocks in the chain", heapFree)}
		}
		if int(bp) < format.PrefixSize || int(bp)+2*format.LinkSize > len(data) {
			return 0, &CheckError{Kind: "list-out-of-bounds", Offset: int(bp),
				Message: "free-list node outside the region"}
		}
		if blockAllocated(data, bp) {
			return 0, &CheckError{Kind: "list-allocated-node", Offset: int(bp),
				Message: "free list points at an allocated block"}
		}
		if got := prevFree(data, bp); got != prev {
			return 0, &CheckError{Kind: "list-link-broken", Offset: int(bp),
				Message: fmt.Sprintf("prev link 0x%X, expected 0x%X", int(got), int(prev))}
		}
		if verbose >= 2 {
			fmt.Fprintf(os.Stderr, "  free[%d] 0x%06X size=%d\n",
				count, int(bp), blockSize(data, bp))
		}
		count++
		prev = bp
	}
	return count, nil
}
