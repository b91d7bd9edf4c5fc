package region

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
)

// DefaultCapacity is the capacity of a Buf created with NewBuf(0): 20 MiB.
const DefaultCapacity = 20 * (1 << 20)

// Buf is an in-memory Region with a fixed capacity.
//
// The backing array is allocated once at construction, so the base address
// never moves and slices returned by Bytes stay valid across Grow. Grow past
// the capacity fails with ErrOutOfCapacity and claims nothing.
//
// The backing memory is deliberately not zeroed: heaps built on top of a
// region give no zero-fill guarantee, so Buf does not pay for one.
type Buf struct {
	data []byte
	used int
}

// NewBuf returns an empty Buf with the given capacity in bytes.
// A capacity of 0 or less selects DefaultCapacity.
func NewBuf(capacity int) *Buf {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buf{data: dirtmake.Bytes(capacity, capacity)}
}

// Bytes returns the claimed span. The base address is stable for the life
// of the Buf.
func (b *Buf) Bytes() []byte { return b.data[:b.used] }

// Size returns the claimed span length.
func (b *Buf) Size() int { return b.used }

// Cap returns the fixed capacity.
func (b *Buf) Cap() int { return len(b.data) }

// Lo returns 0.
func (b *Buf) Lo() int { return 0 }

// Hi returns the highest valid offset, or -1 while nothing has been claimed.
func (b *Buf) Hi() int { return b.used - 1 }

// Grow claims n more bytes and returns the offset where they start.
func (b *Buf) Grow(n int) (int, error) {
	if n <= 0 {
		return 0, ErrBadGrow
	}
	if b.used+n > len(b.data) {
		return 0, ErrOutOfCapacity
	}
	off := b.used
	b.used += n
	return off, nil
}

// Reset discards all claimed bytes, returning the Buf to its empty state.
// Offsets from before the reset are meaningless afterward.
func (b *Buf) Reset() { b.used = 0 }

// FD returns -1: a Buf is not file-backed.
func (b *Buf) FD() int { return -1 }
