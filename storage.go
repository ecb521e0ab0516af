package tiff

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// Storage is the byte-addressable source a Reader decodes from.
// ReadAt combines the seek and read steps of a file handle.
type Storage interface {
	io.ReaderAt
	io.Closer
}

// Opener opens the Storage located at path.
type Opener func(path string) (Storage, error)

// OpenFile opens path as a regular file.
func OpenFile(path string) (Storage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ResourceError(err.Error()), "could not open file")
	}
	return f, nil
}

// OpenMmap maps path into memory. Pixel lookups then avoid a syscall per read.
func OpenMmap(path string) (Storage, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrap(ResourceError(err.Error()), "could not map file")
	}
	return r, nil
}

type bytesStorage struct {
	*bytes.Reader
}

func (bytesStorage) Close() error { return nil }

// NewBytesStorage returns a Storage reading from b.
func NewBytesStorage(b []byte) Storage {
	return bytesStorage{Reader: bytes.NewReader(b)}
}

// readFull reads exactly len(p) bytes at off. Anything less is a format error
// since strip and directory geometry are expected to be self-consistent.
func readFull(s io.ReaderAt, p []byte, off int64) error {
	n, err := s.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = errShortRead
	}
	return errors.Wrapf(err, "read %d bytes at offset %d (got %d)", len(p), off, n)
}
