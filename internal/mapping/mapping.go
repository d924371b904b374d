// Package mapping supplies read-only byte views of model files.
package mapping

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var ErrTooLarge = errors.New("file too large to map")

// File is a read-only view of a file's bytes, memory-mapped when possible.
type File struct {
	Path    string
	data    []byte
	mmapped bool
}

// Open maps path read-only. If mmap is unavailable it falls back to
// FromReaderAt. The returned file must be closed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			return &File{Path: path, data: data, mmapped: true}, nil
		}
	}

	out, err := FromReaderAt(f, size64)
	if err != nil {
		return nil, err
	}
	out.Path = path
	return out, nil
}

// FromReaderAt copies size bytes from r.
func FromReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return &File{data: data}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Bytes returns the file contents. The slice is invalid after Close.
func (f *File) Bytes() []byte { return f.data }

func (f *File) Size() int64 { return int64(len(f.data)) }

func (f *File) Mapped() bool { return f.mmapped }

func (f *File) Close() error {
	if f.mmapped && f.data != nil {
		data := f.data
		f.data = nil
		return unix.Munmap(data)
	}
	f.data = nil
	return nil
}
