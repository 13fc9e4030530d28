// Package mmapfile wraps a single memory-mapped file, read-only for queries
// or read-write for the builder's single writer pass.
package mmapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File represents a memory-mapped region backed by an *os.File.
type File struct {
	file     *os.File
	data     []byte
	size     int64
	readOnly bool
}

// OpenReadOnly opens path and maps its entire contents PROT_READ/MAP_SHARED.
func OpenReadOnly(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}
	size := stat.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("mmapfile: cannot map empty file %s", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
	}

	return &File{file: f, data: data, size: size, readOnly: true}, nil
}

// Create truncates (or creates) path to size and maps it PROT_READ|PROT_WRITE.
// Used by the builder, which is the sole writer for the lifetime of the mapping.
func Create(path string, size int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
	}

	return &File{file: f, data: data, size: size, readOnly: false}, nil
}

// Bytes returns the whole mapped region.
func (m *File) Bytes() []byte { return m.data }

// Size returns the mapped length in bytes.
func (m *File) Size() int64 { return m.size }

// Sync flushes dirty pages to disk and fsyncs the underlying file.
func (m *File) Sync() error {
	if m.readOnly {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("mmapfile: msync: %w", err)
	}
	return m.file.Sync()
}

// Close unmaps the region and closes the underlying file.
func (m *File) Close() error {
	var err error
	if m.data != nil {
		if unmapErr := unix.Munmap(m.data); unmapErr != nil {
			err = fmt.Errorf("mmapfile: munmap: %w", unmapErr)
		}
		m.data = nil
	}
	if m.file != nil {
		if closeErr := m.file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("mmapfile: close: %w", closeErr)
		}
		m.file = nil
	}
	return err
}
