package alloc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/dirty"
	"github.com/joshuapare/memkit/internal/format"
	"github.com/joshuapare/memkit/region"
)

// newTrackedHeap wires a heap to a tracker the test can inspect.
func newTrackedHeap(t *testing.T) (*Heap, *dirty.Tracker) {
	t.Helper()
	r := region.NewBuf(0)
	dt := dirty.NewTracker(r)
	h := New(r, dt, &Config{ChunkSize: 4096, MissLimit: 40})
	require.NoError(t, h.Init())
	return h, dt
}

// rangesCover reports whether any raw dirty range contains off.
func rangesCover(ranges []dirty.Range, off int) bool {
	for _, r := range ranges {
		if int64(off) >= r.Off && int64(off) < r.Off+r.Len {
			return true
		}
	}
	return false
}

// Init must mark the whole prefix and the seeded block's metadata, so a
// commit right after initialization persists a well-formed image.
func Test_DirtyTracking_InitMarksPrefix(t *testing.T) {
	h, dt := newTrackedHeap(t)

	ranges := dt.DebugRanges()
	require.NotEmpty(t, ranges)
	require.True(t, rangesCover(ranges, format.PadOffset), "signature word")
	require.True(t, rangesCover(ranges, format.PrologueHeaderOffset), "prologue")
	require.True(t, rangesCover(ranges, h.Size()-format.WordSize), "epilogue")
}

// Every tag the placement writes must be tracked: the new block's header and
// footer, and the split remainder's tags and links.
func Test_DirtyTracking_AllocMarksMetadata(t *testing.T) {
	h, dt := newTrackedHeap(t)
	dt.Reset()

	ref, _, err := h.Alloc(56)
	require.NoError(t, err)

	data := h.r.Bytes()
	rem := nextBlock(data, ref)
	ranges := dt.DebugRanges()
	require.True(t, rangesCover(ranges, headerOff(ref)), "block header")
	require.True(t, rangesCover(ranges, footerOff(data, ref)), "block footer")
	require.True(t, rangesCover(ranges, nextFreeOff(rem)), "remainder next link")
	require.True(t, rangesCover(ranges, prevFreeOff(rem)), "remainder prev link")
}

func Test_DirtyTracking_FreeMarksTagsAndLinks(t *testing.T) {
	h, dt := newTrackedHeap(t)

	a, _, err := h.Alloc(56)
	require.NoError(t, err)
	_, _, err = h.Alloc(56) // fence, so the free does not coalesce
	require.NoError(t, err)
	dt.Reset()

	require.NoError(t, h.Free(a))

	data := h.r.Bytes()
	ranges := dt.DebugRanges()
	require.True(t, rangesCover(ranges, headerOff(a)), "freed header")
	require.True(t, rangesCover(ranges, footerOff(data, a)), "freed footer")
	require.True(t, rangesCover(ranges, nextFreeOff(a)), "freed next link")
	require.True(t, rangesCover(ranges, prevFreeOff(a)), "freed prev link")
}

// Realloc's payload copy is a write the caller never sees, so the allocator
// must report it itself.
func Test_DirtyTracking_ReallocMarksCopiedPayload(t *testing.T) {
	h, dt := newTrackedHeap(t)

	a, buf, err := h.Alloc(100)
	require.NoError(t, err)
	fillPayload(buf, 0x42)
	dt.Reset()

	newRef, _, err := h.Realloc(a, 200)
	require.NoError(t, err)

	ranges := dt.DebugRanges()
	require.True(t, rangesCover(ranges, int(newRef)), "copied payload start")
}

func Test_DirtyTracking_CoalescedRangesPageAligned(t *testing.T) {
	h, dt := newTrackedHeap(t)

	var refs []Ref
	for i := 0; i < 10; i++ {
		ref, _, err := h.Alloc(30 + i*16)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	for i := 0; i < len(refs); i += 2 {
		require.NoError(t, h.Free(refs[i]))
	}

	var prevEnd int64 = -1
	for _, r := range dt.DebugCoalescedRanges() {
		require.Zero(t, r.Off%format.PageSize, "span offset page-aligned")
		require.Zero(t, r.Len%format.PageSize, "span length page-aligned")
		require.Greater(t, r.Off, prevEnd, "spans sorted and disjoint")
		prevEnd = r.Off + r.Len
	}
}

// End-to-end: heap churn over a file-backed region, then a durable commit.
func Test_DirtyTracking_CommitAfterChurn(t *testing.T) {
	path := t.TempDir() + "/tracked.mem"
	r, err := region.Create(path)
	require.NoError(t, err)
	defer r.Close()

	dt := dirty.NewTracker(r)
	h := New(r, dt, &Config{ChunkSize: 4096, MissLimit: 40})
	require.NoError(t, h.Init())

	ref, buf, err := h.Alloc(500)
	require.NoError(t, err)
	fillPayload(buf, 0x9D)
	require.NoError(t, h.Free(ref))

	require.NoError(t, dt.Commit(context.Background(), dirty.FlushAuto))
	require.Empty(t, dt.DebugRanges(), "commit clears the tracked set")
}
