package region

import "os"

// File is a file-backed Region holding a persistent heap image.
//
// On linux and darwin the image is mmapped read-write (MAP_SHARED), so byte
// writes land in the page cache and can be flushed selectively. On other
// platforms the image is buffered in memory and written back on Grow/Sync.
//
// Grow remaps (or reallocates) the span: every slice previously returned by
// Bytes is stale afterward. Callers re-fetch Bytes per operation.
type File struct {
	f    *os.File
	data []byte
	size int64
}

// Bytes returns the current image span. Stale after Grow.
func (r *File) Bytes() []byte { return r.data }

// Size returns the image length in bytes.
func (r *File) Size() int { return int(r.size) }

// Lo returns 0.
func (r *File) Lo() int { return 0 }

// Hi returns the highest valid offset (inclusive), or -1 for an empty image.
func (r *File) Hi() int { return int(r.size) - 1 }

// FD returns the underlying file descriptor, or -1 when closed.
func (r *File) FD() int {
	if r == nil || r.f == nil {
		return -1
	}
	return int(r.f.Fd())
}

// Path returns the file's name as given to Create or Open.
func (r *File) Path() string {
	if r == nil || r.f == nil {
		return ""
	}
	return r.f.Name()
}
