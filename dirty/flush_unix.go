//go:build linux || freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes individual dirty ranges to disk.
//
// On Linux and other Unix systems, msync() can handle sub-slices correctly.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	coalesced := t.coalesce()

	for _, r := range coalesced {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := int(r.Off)
		end := int(r.Off + r.Len)
		if start >= len(data) {
			continue
		}
		if end > len(data) {
			end = len(data)
		}

		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}

	return nil
}

// fdatasync performs a file descriptor sync.
//
// On Linux/FreeBSD, fdatasync() provides sufficient guarantees.
// The fullfsync parameter is ignored here.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
