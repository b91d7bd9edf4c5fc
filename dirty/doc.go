// Package dirty provides page-level dirty tracking for file-backed heap
// images.
//
// # Overview
//
// This package tracks which byte ranges of a heap image have been modified,
// enabling commits that only flush changed pages back to disk. The heap
// allocator reports every metadata write (tags, free-list links, grown
// areas); callers add the payload ranges they mutate themselves.
//
// # Tracker
//
// The main type provides:
//
//   - Add(offset, length): mark a range as dirty
//   - Flush(ctx): msync dirty pages to the backing file
//   - Commit(ctx, mode): Flush plus a file-descriptor sync per FlushMode
//   - Reset(): clear all dirty marks
//
// # Page-Level Granularity
//
// Flushing operates at 4KB page boundaries: ranges are rounded out to whole
// pages, sorted, and merged before the platform sync calls run. A 1-byte
// change flushes its entire page.
//
// # Platform behavior
//
// linux/freebsd msync each coalesced range; darwin must msync the whole
// mapping (the kernel only writes dirty pages); windows and other platforms
// fall back to file-level syncs because the region there is not mmapped.
package dirty
