// Package alloc implements a general-purpose dynamic memory allocator over a
// growable region of bytes.
//
// # Overview
//
// A Heap hands out blocks carved from a region.Region, with no operating
// system allocator underneath: block layout, free-space tracking, placement,
// and coalescing are all managed here. Every block carries a boundary tag at
// each end (size plus allocated bit), free blocks are threaded onto an
// intrusive doubly-linked free list stored in their own payload bytes, and
// placement is first-fit with an adaptive bypass for workloads that
// repeatedly miss with the same size.
//
// # Heap Operations
//
// The core type is Heap, which supports:
//
//   - Alloc(size): allocate a block, growing the region when needed
//   - Free(ref): release a block and merge it with free neighbors
//   - Realloc(ref, size): move a block to a new size, copying payload
//   - Payload(ref): re-fetch a block's payload slice
//   - Check(verbose): walk the image and validate every invariant
//
// # Block References
//
// A Ref is the offset of a block's payload from the start of the region.
// Refs stay valid across region growth (the region base never moves
// logically), but payload slices may not: file-backed regions remap on
// growth, so slices must be re-fetched per operation via Payload.
//
// NullRef (0) is never a valid payload offset; it plays the role a nil
// pointer would.
//
// # Image Layout
//
// A heap image starts with a fixed prefix: one pad word carrying the "memk"
// signature, a permanently allocated prologue block (header and footer
// only), and a zero-size allocated epilogue header that is rewritten at the
// end of the image after every growth. The sentinels terminate traversal
// and coalescing without edge cases.
//
// # Usage Example
//
//	r := region.NewBuf(0)
//	h := alloc.New(r, nil, nil)
//
//	ref, buf, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payloadBytes)
//
//	// Later, release the block
//	err = h.Free(ref)
//
// # Persistence
//
// A heap built on a region.File survives process restarts: Attach validates
// the image prefix and rebuilds the free list by scanning the block chain.
// Pass a dirty.Tracker to have every metadata write recorded for selective
// flushing; pass nil to skip tracking.
//
// # Errors
//
// Alloc and Realloc fail with ErrOutOfMemory when the region cannot grow;
// the heap stays usable and smaller requests may still succeed. Freeing or
// resizing a reference the allocator never produced is undefined behavior;
// the obvious cases (out of bounds, misaligned, not allocated) come back as
// ErrBadRef, but the checks are best-effort, not a contract.
//
// # Thread Safety
//
// Heap instances are not thread-safe. Callers must serialize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/memkit/region: growable memory areas
//   - github.com/joshuapare/memkit/dirty: dirty-range tracking for file images
//   - github.com/joshuapare/memkit/internal/format: tag packing and layout
package alloc
