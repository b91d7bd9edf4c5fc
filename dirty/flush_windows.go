//go:build windows

package dirty

import (
	"context"

	"golang.org/x/sys/windows"
)

// flushRanges is a no-op on Windows: the region there is buffered in
// process memory rather than mmapped, so there are no pages to msync.
// Durability comes from the descriptor sync in Commit and from the
// region's write-back on Close.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	return ctx.Err()
}

// fdatasync performs a file descriptor sync using FlushFileBuffers, which
// writes all buffered file data and metadata to disk. The fullfsync
// parameter is ignored on Windows.
func fdatasync(fd int, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}
