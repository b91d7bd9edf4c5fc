package alloc

// Stats holds internal heap counters for testing and instrumentation.
type Stats struct {
	AllocCalls   int // Total Alloc() calls
	FreeCalls    int // Total Free() calls
	ReallocCalls int // Total Realloc() calls

	GrowCalls int   // Number of region Grow() calls
	GrowBytes int64 // Total bytes claimed via Grow()

	BytesAllocated int64 // Total block bytes handed out (including tags)
	BytesFreed     int64 // Total block bytes released (including tags)

	SplitCount       int // Oversized blocks split during placement
	CoalesceForward  int // Merges that absorbed a successor
	CoalesceBackward int // Merges that folded into a predecessor

	ScanSteps   int64 // Free-list nodes inspected by first-fit
	BypassGrows int   // Placements that skipped the scan via the miss heuristic
}
