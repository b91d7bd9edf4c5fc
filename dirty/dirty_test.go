package dirty

import (
	"context"
	"testing"

	"github.com/joshuapare/memkit/region"
)

// Test 1: Page Alignment.
func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 16))

	// Add a range that's NOT page-aligned (offset 100, length 200)
	tracker.Add(100, 200)

	coalesced := tracker.coalesce()

	// Start: 100 rounds down to 0
	// End: 100+200=300 rounds up to 4096
	if len(coalesced) != 1 {
		t.Fatalf("Expected 1 coalesced range, got %d", len(coalesced))
	}
	if coalesced[0].Off != 0 {
		t.Errorf("Start not aligned: got %d, want 0", coalesced[0].Off)
	}
	if coalesced[0].Len != 4096 {
		t.Errorf("Length not aligned: got %d, want 4096", coalesced[0].Len)
	}
}

// Test 2: Adjacent ranges merge into one.
func Test_DirtyTracker_Coalesce_Adjacent(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 16))

	tracker.Add(0, 100)    // page 0
	tracker.Add(4096, 100) // page 1, adjacent after alignment

	coalesced := tracker.coalesce()

	if len(coalesced) != 1 {
		t.Fatalf("Expected 1 merged range, got %d", len(coalesced))
	}
	if coalesced[0].Off != 0 || coalesced[0].Len != 8192 {
		t.Errorf("Unexpected merged range: %+v", coalesced[0])
	}
}

// Test 3: Overlapping ranges merge into one.
func Test_DirtyTracker_Coalesce_Overlapping(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 16))

	tracker.Add(100, 4096) // spans pages 0-1
	tracker.Add(4000, 100) // inside page 0-1 span

	coalesced := tracker.coalesce()

	if len(coalesced) != 1 {
		t.Fatalf("Expected 1 merged range, got %d", len(coalesced))
	}
	if coalesced[0].Off != 0 || coalesced[0].Len != 8192 {
		t.Errorf("Unexpected merged range: %+v", coalesced[0])
	}
}

// Test 4: Separated ranges stay separate.
func Test_DirtyTracker_Coalesce_Separate(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 20))

	tracker.Add(0, 100)
	tracker.Add(3*4096, 100)

	coalesced := tracker.coalesce()

	if len(coalesced) != 2 {
		t.Fatalf("Expected 2 ranges, got %d", len(coalesced))
	}
	if coalesced[0].Off != 0 || coalesced[0].Len != 4096 {
		t.Errorf("Unexpected first range: %+v", coalesced[0])
	}
	if coalesced[1].Off != 3*4096 || coalesced[1].Len != 4096 {
		t.Errorf("Unexpected second range: %+v", coalesced[1])
	}
}

// Test 5: Unsorted input is sorted before merging.
func Test_DirtyTracker_Coalesce_Unsorted(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 20))

	tracker.Add(8*4096, 10)
	tracker.Add(0, 10)
	tracker.Add(4096, 10)

	coalesced := tracker.coalesce()

	if len(coalesced) != 2 {
		t.Fatalf("Expected 2 ranges, got %d", len(coalesced))
	}
	if coalesced[0].Off != 0 || coalesced[0].Len != 8192 {
		t.Errorf("Unexpected first range: %+v", coalesced[0])
	}
	if coalesced[1].Off != 8*4096 {
		t.Errorf("Unexpected second range: %+v", coalesced[1])
	}
}

// Test 6: Reset clears tracked ranges.
func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 16))

	tracker.Add(0, 100)
	tracker.Add(4096, 100)

	if len(tracker.DebugRanges()) != 2 {
		t.Fatalf("Expected 2 raw ranges before reset")
	}

	tracker.Reset()

	if len(tracker.DebugRanges()) != 0 {
		t.Fatalf("Expected 0 ranges after reset")
	}
	if tracker.DebugCoalescedRanges() != nil {
		t.Fatalf("Expected nil coalesced ranges after reset")
	}
}

// Test 7: Many ranges coalesce without error.
func Test_DirtyTracker_Coalesce_ManyRanges(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 22))

	// 100 ranges, every other page
	for i := 0; i < 100; i++ {
		tracker.Add(i*2*4096, 64)
	}

	coalesced := tracker.coalesce()

	if len(coalesced) != 100 {
		t.Fatalf("Expected 100 distinct ranges, got %d", len(coalesced))
	}
	for i, r := range coalesced {
		if r.Off != int64(i*2*4096) || r.Len != 4096 {
			t.Fatalf("Range %d unexpected: %+v", i, r)
		}
	}
}

// Test 8: Flush on an in-memory region is a cheap no-op that still clears.
func Test_DirtyTracker_Flush_InMemoryRegion(t *testing.T) {
	b := region.NewBuf(1 << 16)
	if _, err := b.Grow(8192); err != nil {
		t.Fatalf("grow: %v", err)
	}
	tracker := NewTracker(b)

	tracker.Add(0, 100)
	if err := tracker.Flush(context.Background()); err != nil {
		t.Fatalf("Flush on Buf region: %v", err)
	}
	if len(tracker.DebugRanges()) != 0 {
		t.Fatalf("Expected ranges cleared after flush")
	}
}

// Test 9: Flush with nothing tracked returns immediately.
func Test_DirtyTracker_Flush_Empty(t *testing.T) {
	tracker := NewTracker(region.NewBuf(1 << 16))
	if err := tracker.Flush(context.Background()); err != nil {
		t.Fatalf("Flush with no ranges: %v", err)
	}
}
