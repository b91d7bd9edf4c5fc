package trace

import "errors"

var (
	// ErrSyntax reports a malformed trace file: bad header, unknown op,
	// out-of-range id, or an op count that disagrees with the header.
	ErrSyntax = errors.New("trace: malformed trace")

	// ErrReplay reports a trace whose operations are inconsistent with the
	// allocator's state: allocating a live id, or touching a dead one.
	ErrReplay = errors.New("trace: invalid replay operation")

	// ErrCorruption reports payload bytes that changed while their block was
	// live, which means two blocks overlapped.
	ErrCorruption = errors.New("trace: payload corrupted during replay")
)
