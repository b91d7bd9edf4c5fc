package format

// Alignment utilities for the heap image. Block sizes and payload offsets
// are 8-byte aligned; dirty-range flushing works in whole pages.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + AlignMask) & ^AlignMask
}

// AlignPage returns n aligned up to the next page boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageMask) & ^PageMask
}

// PageBase returns n rounded down to the start of its page.
func PageBase(n int) int {
	return n & ^PageMask
}
