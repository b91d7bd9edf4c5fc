package dirty

// DirtyTracker is the minimal interface for reporting dirty (modified) byte
// ranges. It is the hook the heap allocator writes through; components that
// only notify about modifications and never flush should depend on this
// rather than on Tracker.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the image, length is the number of bytes.
	Add(off, length int)
}
