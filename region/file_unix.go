//go:build linux || darwin

package region

import (
	"fmt"
	"os"
	"syscall"
)

// Create makes a new, empty image file. The region starts at size zero;
// the first Grow extends the file and establishes the mapping.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Open mmaps an existing image RW so heap operations mutate it in place.
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

	data, err := syscall.Mmap(
		int(f.Fd()),
		0,
		int(sz),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: mmap failed: %w", err)
	}

	return &File{f: f, data: data, size: sz}, nil
}

// Grow extends the image file by n bytes and remaps it at the new size.
// File extension zero-fills, but callers must not depend on that.
func (r *File) Grow(n int) (int, error) {
	if r == nil || r.f == nil {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, ErrBadGrow
	}

	newSize := r.size + int64(n)

	// Unmap the current mapping before the file changes size.
	if r.data != nil {
		if err := syscall.Munmap(r.data); err != nil {
			return 0, fmt.Errorf("region: unmap before grow: %w", err)
		}
		r.data = nil
	}

	if err := r.f.Truncate(newSize); err != nil {
		// Remap at the old size to recover a usable region.
		if r.size > 0 {
			data, _ := syscall.Mmap(
				int(r.f.Fd()),
				0,
				int(r.size),
				syscall.PROT_READ|syscall.PROT_WRITE,
				syscall.MAP_SHARED,
			)
			r.data = data
		}
		return 0, fmt.Errorf("region: extend file: %w", err)
	}

	data, err := syscall.Mmap(
		int(r.f.Fd()),
		0,
		int(newSize),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	if err != nil {
		if r.size > 0 {
			oldData, _ := syscall.Mmap(
				int(r.f.Fd()),
				0,
				int(r.size),
				syscall.PROT_READ|syscall.PROT_WRITE,
				syscall.MAP_SHARED,
			)
			r.data = oldData
		}
		return 0, fmt.Errorf("region: remap after grow: %w", err)
	}

	off := int(r.size)
	r.data = data
	r.size = newSize
	return off, nil
}

// Close unmaps the image and closes the file.
func (r *File) Close() error {
	var err error
	if r.data != nil {
		_ = syscall.Munmap(r.data)
		r.data = nil
	}
	if r.f != nil {
		err = r.f.Close()
		r.f = nil
	}
	r.size = 0
	return err
}
