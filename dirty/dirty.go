package dirty

import (
	"context"
	"sort"

	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/region"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
// This reduces allocations during typical workloads.
const defaultRangeCapacity = 64

// FlushMode controls durability guarantees for Commit.
type FlushMode int

const (
	// FlushAuto provides safe defaults for most use cases:
	// msync() dirty pages, then fdatasync().
	FlushAuto FlushMode = iota

	// FlushDataOnly only flushes dirty pages via msync().
	// The caller is responsible for a descriptor sync later.
	// Use this when batching multiple commits together.
	FlushDataOnly

	// FlushFull provides ultra-safe durability: msync() dirty pages,
	// fdatasync(), and on macOS F_FULLFSYNC to reach the physical disk.
	// Use this for power-loss sensitive workflows.
	FlushFull
)

// Range represents a dirty byte range (absolute image offsets).
type Range struct {
	Off int64 // Absolute offset in the image
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges for a region and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	r      region.Region
	ranges []Range // Dirty ranges (coalesced at flush time)
}

// NewTracker creates a dirty tracker for the given region.
//
// The tracker pre-allocates capacity for 64 ranges to minimize allocations
// during typical workloads.
func NewTracker(r region.Region) *Tracker {
	return &Tracker{
		r:      r,
		ranges: make([]Range, 0, defaultRangeCapacity),
	}
}

// Add records a dirty range.
//
// The range is page-aligned and coalesced with other ranges at flush time.
// Add itself only appends to a slice, so it is cheap enough for the
// allocator to call on every metadata write.
func (t *Tracker) Add(off, length int) {
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Flush writes all dirty pages back to the underlying file.
//
// Ranges are coalesced into page-aligned, non-overlapping spans, each span
// is synced with the platform call (msync on mmapped regions), and the
// tracked set is cleared.
//
// The context can cancel the operation between spans; some spans may then
// have been flushed while others have not.
func (t *Tracker) Flush(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Nothing to sync against for purely in-memory regions.
	data := t.r.Bytes()
	if len(data) == 0 || t.r.FD() < 0 {
		t.ranges = t.ranges[:0]
		return nil
	}

	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}

	t.ranges = t.ranges[:0]
	return nil
}

// Commit flushes dirty pages and then syncs the file descriptor according
// to mode. With FlushDataOnly it is equivalent to Flush.
//
// If the context is cancelled after pages were flushed but before the
// descriptor sync, the image on disk may be newer than its metadata.
func (t *Tracker) Commit(ctx context.Context, mode FlushMode) error {
	if err := t.Flush(ctx); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fd := t.r.FD()
	if fd < 0 {
		return nil
	}
	fullfsync := mode == FlushFull
	return fdatasync(fd, fullfsync)
}

// Reset clears all tracked ranges.
//
// This is useful for testing or when abandoning unwritten changes.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns the current dirty ranges (for testing/debugging).
//
// The returned ranges are the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the coalesced dirty ranges (for testing/debugging).
//
// These are the page-aligned, sorted, merged ranges that a Flush would sync.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ranges into a new slice of non-overlapping spans.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := int64(format.PageBase(int(r.Off)))
		end := int64(format.AlignPage(int(r.Off + r.Len)))
		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]

		if next.Off <= current.Off+current.Len {
			end := current.Off + current.Len
			nextEnd := next.Off + next.Len
			if nextEnd > end {
				end = nextEnd
			}
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	merged = append(merged, current)
	return merged
}
