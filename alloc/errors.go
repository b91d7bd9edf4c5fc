package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the region could not grow to satisfy a request.
	// The heap remains usable; smaller requests may still succeed.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadRef indicates a reference that is out of bounds, misaligned, or
	// does not name an allocated block.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrBadImage indicates an image whose prefix or block chain is not a
	// well-formed heap.
	ErrBadImage = errors.New("alloc: malformed heap image")
)
