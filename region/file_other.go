//go:build !linux && !darwin

package region

import (
	"fmt"
	"io"
	"os"
)

// Create makes a new, empty image file. The region starts at size zero;
// the first Grow extends the file and allocates the buffer.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Open loads an existing image into memory on platforms without the mmap path.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz == 0 {
		_ = f.Close()
		return nil, ErrEmptyFile
	}

	buf := make([]byte, sz)
	if _, err := io.ReadFull(f, buf); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &File{f: f, data: buf, size: sz}, nil
}

// Grow extends the image file by n bytes and the in-memory buffer with it.
func (r *File) Grow(n int) (int, error) {
	if r == nil || r.f == nil {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, ErrBadGrow
	}

	newSize := r.size + int64(n)

	newData := make([]byte, newSize)
	copy(newData, r.data)

	if err := r.f.Truncate(newSize); err != nil {
		return 0, fmt.Errorf("region: extend file: %w", err)
	}

	off := int(r.size)
	r.data = newData
	r.size = newSize
	return off, nil
}

// Close writes the buffered image back and closes the file.
func (r *File) Close() error {
	var err error
	if r.f != nil {
		if r.data != nil {
			if _, werr := r.f.WriteAt(r.data, 0); werr != nil && err == nil {
				err = werr
			}
		}
		if cerr := r.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.f = nil
	}
	r.data = nil
	r.size = 0
	return err
}
