package alloc

import (
	"fmt"
	"os"

	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/region"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugAlloc = false

// Runtime debug flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

// Config holds the heap's tunables.
type Config struct {
	// ChunkSize is the default region growth increment in bytes. Growth
	// requests are max(needed, ChunkSize) so that one grow amortizes many
	// small allocations.
	ChunkSize int

	// MissLimit arms the adaptive placement bypass: once the same adjusted
	// size has missed the free-list scan more than MissLimit consecutive
	// times, further requests of that size skip the scan and grow the
	// region directly. Zero or negative disables the bypass. This is a
	// throughput heuristic only; results are identical either way.
	MissLimit int
}

// DefaultConfig is used when New or Attach receive a nil config.
var DefaultConfig = Config{
	ChunkSize: 1 << 16,
	MissLimit: 40,
}

// Heap is a dynamic memory allocator over a growable region.
//
// All state lives either in the region's bytes (tags, free-list links) or
// in this struct (free-list head, adaptive counters, statistics); there are
// no package-level globals, so independent heaps can coexist.
//
// NOT thread-safe. Callers must serialize access.
type Heap struct {
	r   region.Region
	dt  DirtyTracker // optional, nil disables tracking
	cfg Config

	freeHead    Ref // head of the intrusive free list, NullRef when empty
	initialized bool

	// Adaptive bypass state: the last adjusted size that missed the scan
	// and how many consecutive times it has missed.
	lastMissSize int
	missCount    int

	stats Stats
}

// New creates a heap over an empty region. The region is not touched until
// Init or the first Alloc; use Attach for a region already holding an image.
//
// Parameters:
//   - r: the region to allocate from
//   - dt: dirty tracker for metadata writes (nil to disable tracking)
//   - config: tunables (nil for DefaultConfig)
func New(r region.Region, dt DirtyTracker, config *Config) *Heap {
	if config == nil {
		config = &DefaultConfig
	}
	return &Heap{r: r, dt: dt, cfg: *config}
}

// Attach opens a heap over a region that already holds an image, validating
// the prefix and rebuilding the free list by scanning the block chain.
//
// The free-list head is allocator state, not image state, so the rebuilt
// list holds the same blocks the previous process saw but not necessarily
// in the same order.
func Attach(r region.Region, dt DirtyTracker, config *Config) (*Heap, error) {
	h := New(r, dt, config)

	data := r.Bytes()
	if err := format.CheckSignature(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if err := checkPrologue(data); err != nil {
		return nil, err
	}
	if len(data) < format.PrefixSize+format.WordSize ||
		format.ReadU32(data, len(data)-format.WordSize) != format.PackTag(0, true) {
		return nil, fmt.Errorf("%w: missing epilogue", ErrBadImage)
	}

	if err := h.rebuildFreeList(data); err != nil {
		return nil, err
	}
	h.initialized = true
	return h, nil
}

// checkPrologue validates the permanently allocated prologue block.
func checkPrologue(data []byte) error {
	hdr := format.ReadU32(data, format.PrologueHeaderOffset)
	ftr := format.ReadU32(data, format.PrologueFooterOffset)
	want := format.PackTag(format.PrologueSize, true)
	if hdr != want || ftr != want {
		return fmt.Errorf("%w: bad prologue", ErrBadImage)
	}
	return nil
}

// rebuildFreeList scans the block chain and threads every free block onto
// a fresh free list. Chain corruption surfaces as ErrBadImage.
func (h *Heap) rebuildFreeList(data []byte) error {
	h.freeHead = NullRef
	bp := Ref(format.PrefixSize)
	for {
		if headerOff(bp) >= len(data) {
			return fmt.Errorf("%w: block chain runs past the region end", ErrBadImage)
		}
		size := blockSize(data, bp)
		if size == 0 {
			if !blockAllocated(data, bp) || headerOff(bp) != len(data)-format.WordSize {
				return fmt.Errorf("%w: zero-size block before the region end", ErrBadImage)
			}
			return nil // epilogue
		}
		if size < format.MinBlockSize || size%format.DWordSize != 0 {
			return fmt.Errorf("%w: block at %d has size %d", ErrBadImage, bp, size)
		}
		if !blockAllocated(data, bp) {
			h.insertFree(data, bp)
		}
		bp = nextBlock(data, bp)
	}
}

// Init lays down an empty well-formed heap: signature pad word, prologue,
// epilogue, and one chunk-sized free block to seed the free list. The
// region must be empty. Alloc calls Init lazily, so explicit use is only
// needed to control when the first growth happens.
func (h *Heap) Init() error {
	if h.initialized {
		return nil
	}
	if h.r.Size() != 0 {
		return fmt.Errorf("%w: Init on a non-empty region (use Attach)", ErrBadImage)
	}

	if _, err := h.r.Grow(format.PrefixSize); err != nil {
		debugLogf("Init: prefix grow failed: %v", err)
		return ErrOutOfMemory
	}
	data := h.r.Bytes()
	format.PutSignature(data)
	prologue := format.PackTag(format.PrologueSize, true)
	format.PutU32(data, format.PrologueHeaderOffset, prologue)
	format.PutU32(data, format.PrologueFooterOffset, prologue)
	h.writeEpilogue(data, format.PrefixSize-format.WordSize)
	h.mark(0, format.PrefixSize)

	h.freeHead = NullRef
	h.initialized = true

	// Seed the free list with one chunk. If this fails the prefix alone is
	// still a well-formed (zero-space) heap, so a later Alloc can retry the
	// growth.
	if _, err := h.extend(h.cfg.ChunkSize); err != nil {
		return err
	}
	return nil
}

// extend grows the region by at least n bytes and installs the new area as
// a single free block, coalescing it with a trailing free neighbor. The
// block written over the old epilogue keeps the chain contiguous; a new
// epilogue is stamped at the region's new end.
func (h *Heap) extend(n int) (Ref, error) {
	size := format.Align8(n)
	if size < format.MinBlockSize {
		size = format.MinBlockSize
	}

	off, err := h.r.Grow(size)
	if err != nil {
		debugLogf("extend(%d): grow failed: %v", size, err)
		return NullRef, ErrOutOfMemory
	}
	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(size)

	data := h.r.Bytes()
	bp := Ref(off) // header lands on the old epilogue word
	h.writeTags(data, bp, size, false)
	h.writeEpilogue(data, headerOff(nextBlock(data, bp)))

	return h.coalesce(data, bp), nil
}

// Alloc allocates a block of at least size payload bytes and returns its
// reference plus the payload slice. A size of 0 or less is a no-op
// returning NullRef and no error. Payload bytes are uninitialized.
//
// The returned slice is valid until the next operation that can grow the
// region; re-fetch it with Payload afterward.
func (h *Heap) Alloc(size int) (Ref, []byte, error) {
	h.stats.AllocCalls++

	if !h.initialized {
		if err := h.Init(); err != nil {
			return NullRef, nil, err
		}
	}
	if size <= 0 {
		return NullRef, nil, nil
	}

	asize := adjustSize(size)
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] Request: %d bytes → block of %d bytes\n", size, asize)
	}

	data := h.r.Bytes()

	if h.bypassScan(asize) {
		// The free list has repeatedly proven useless for this size; grow
		// just enough for the request instead of scanning again.
		h.stats.BypassGrows++
		bp, err := h.extend(asize)
		if err != nil {
			return NullRef, nil, err
		}
		data = h.r.Bytes()
		h.place(data, bp, asize)
		return bp, h.payloadSlice(data, bp), nil
	}

	if bp := h.findFit(data, asize); bp != NullRef {
		h.place(data, bp, asize)
		return bp, h.payloadSlice(data, bp), nil
	}

	grow := asize
	if grow < h.cfg.ChunkSize {
		grow = h.cfg.ChunkSize
	}
	bp, err := h.extend(grow)
	if err != nil {
		return NullRef, nil, err
	}
	data = h.r.Bytes()
	h.place(data, bp, asize)
	return bp, h.payloadSlice(data, bp), nil
}

// Free releases the block at ref and coalesces it with any free neighbors.
// NullRef is a no-op. Refs the heap never produced are undefined behavior;
// the obvious cases fail with ErrBadRef.
func (h *Heap) Free(ref Ref) error {
	h.stats.FreeCalls++

	if ref == NullRef {
		return nil
	}
	data := h.currentBytes()
	if !validRef(data, ref) {
		return ErrBadRef
	}

	size := blockSize(data, ref)
	h.writeTags(data, ref, size, false)
	h.coalesce(data, ref)
	h.stats.BytesFreed += int64(size)
	return nil
}

// Realloc moves the block at ref to a new block of at least size payload
// bytes, copying min(size, old payload size) bytes. NullRef behaves as a
// fresh Alloc; size <= 0 behaves as Free and returns NullRef. On failure
// the old block is untouched.
func (h *Heap) Realloc(ref Ref, size int) (Ref, []byte, error) {
	h.stats.ReallocCalls++

	if ref == NullRef {
		return h.Alloc(size)
	}
	if size <= 0 {
		return NullRef, nil, h.Free(ref)
	}

	data := h.currentBytes()
	if !validRef(data, ref) {
		return NullRef, nil, ErrBadRef
	}
	oldPayload := blockSize(data, ref) - format.TagOverhead

	newRef, buf, err := h.Alloc(size)
	if err != nil {
		return NullRef, nil, err
	}

	// Alloc may have grown the region; re-fetch before copying.
	data = h.r.Bytes()
	n := size
	if oldPayload < n {
		n = oldPayload
	}
	copy(buf[:n], data[int(ref):int(ref)+n])
	h.markPayload(int(newRef), n)

	if err := h.Free(ref); err != nil {
		return NullRef, nil, err
	}
	return newRef, buf, nil
}

// Payload returns the block's current payload slice. Use this to re-fetch
// after any operation that can grow the region.
func (h *Heap) Payload(ref Ref) ([]byte, error) {
	data := h.currentBytes()
	if ref == NullRef || !validRef(data, ref) {
		return nil, ErrBadRef
	}
	return h.payloadSlice(data, ref), nil
}

// Size returns the current region size in bytes.
func (h *Heap) Size() int { return h.r.Size() }

// Stats returns a copy of the heap's counters.
func (h *Heap) Stats() Stats { return h.stats }

// payloadSlice carves the payload out of the region bytes.
func (h *Heap) payloadSlice(data []byte, bp Ref) []byte {
	return data[int(bp) : int(bp)+blockSize(data, bp)-format.TagOverhead]
}

// currentBytes fetches the live region span, nil-safe before the first grow.
func (h *Heap) currentBytes() []byte {
	return h.r.Bytes()
}

// adjustSize converts a payload request into a block size: payload plus two
// tags, rounded up to the alignment granularity, clamped to the minimum
// block size so a later Free can always store the list links.
func adjustSize(size int) int {
	asize := format.Align8(size + format.TagOverhead)
	if asize < format.MinBlockSize {
		asize = format.MinBlockSize
	}
	return asize
}

// mark reports a metadata write to the dirty tracker, if any.
func (h *Heap) mark(off, length int) {
	if h.dt != nil {
		h.dt.Add(off, length)
	}
}

// markPayload reports a payload write (Realloc's copy) to the tracker.
func (h *Heap) markPayload(off, length int) {
	if h.dt != nil && length > 0 {
		h.dt.Add(off, length)
	}
}

// debugLogf prints debug messages if debugAlloc is enabled.
func debugLogf(format string, args ...any) {
	if debugAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] "+format+"\n", args...)
	}
}
