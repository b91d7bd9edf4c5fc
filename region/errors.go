package region

import "errors"

var (
	// ErrOutOfCapacity indicates a Grow would exceed the region's fixed capacity.
	ErrOutOfCapacity = errors.New("region: out of capacity")

	// ErrBadGrow indicates a non-positive Grow request.
	ErrBadGrow = errors.New("region: grow size must be positive")

	// ErrClosed indicates an operation on a closed region.
	ErrClosed = errors.New("region: closed")

	// ErrEmptyFile indicates an attempt to open a zero-length image file.
	ErrEmptyFile = errors.New("region: empty image file")
)
