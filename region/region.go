// Package region provides the growable memory areas a heap lives in.
//
// A Region is a contiguous, byte-addressable span with a fixed low bound.
// It only ever grows: Grow claims n more bytes at the high end and returns
// the offset where they begin. Nothing above region ever shrinks a region
// or returns memory to it.
//
// Two implementations are provided:
//
//   - Buf: an in-memory region with a fixed capacity, for transient heaps
//     and tests. The backing array is allocated once, so offsets and the
//     base address stay stable across Grow calls.
//   - File: a file-backed region (mmap on linux/darwin, buffered elsewhere)
//     for heap images that persist across processes. Grow remaps, so byte
//     slices obtained from Bytes become stale; callers must re-fetch after
//     any operation that can grow.
//
// Grown bytes carry no zero-fill guarantee. Buf hands out uninitialized
// memory; File extension happens to zero because file truncation does, but
// callers must not rely on it.
package region

// Region is a monotonically growing span of bytes addressed by offsets
// from its low bound.
type Region interface {
	// Bytes returns the current span. The slice is invalidated by Grow on
	// implementations that remap; re-fetch it per operation.
	Bytes() []byte

	// Size returns the current span length in bytes.
	Size() int

	// Lo returns the lowest valid offset, always 0.
	Lo() int

	// Hi returns the highest valid offset (inclusive), or -1 while the
	// region is empty.
	Hi() int

	// Grow claims n more bytes at the high end and returns the offset of
	// the first new byte. n must be positive.
	Grow(n int) (int, error)

	// FD returns the backing file descriptor, or -1 when the region is not
	// file-backed.
	FD() int
}
