package alloc

import "github.com/joshuapare/memkit/dirty"

// DirtyTracker is a type alias for the canonical interface defined in dirty.
// This alias keeps the allocator's constructor signatures free of a second
// interface definition while letting callers pass a *dirty.Tracker directly.
type DirtyTracker = dirty.DirtyTracker
