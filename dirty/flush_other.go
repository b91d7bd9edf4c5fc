//go:build !linux && !freebsd && !darwin && !windows

package dirty

import "context"

// flushRanges is a no-op on platforms without an mmap-backed region.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	return ctx.Err()
}

// fdatasync is a no-op on platforms without a sync primitive binding.
func fdatasync(_ int, _ bool) error {
	return nil
}
