package wallet

import (
	"errors"
	"fmt"
	"os"
)

// ErrOutOfRange is returned by Slice when the requested span leaves the
// buffer. Scanners guard against it; seeing it means a scanner bug.
var ErrOutOfRange = errors.New("wallet: slice out of range")

// IOError reports that a wallet file could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("wallet: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Buffer is the immutable byte content of one wallet file. It is safe for
// concurrent reads.
type Buffer struct {
	path string
	data []byte
}

// Load reads the complete file at path.
func Load(path string) (*Buffer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	log.Debugf("Loaded %s (%d bytes)", path, len(b))
	return &Buffer{path: path, data: b}, nil
}

// FromBytes wraps data without copying. Callers must not modify data
// afterwards.
func FromBytes(path string, data []byte) *Buffer {
	return &Buffer{path: path, data: data}
}

// Path returns the path the buffer was loaded from (may be virtual).
func (b *Buffer) Path() string { return b.path }

// Size returns the number of bytes in the buffer.
func (b *Buffer) Size() int { return len(b.data) }

// ByteAt returns the byte at offset i. It panics when i is outside the
// buffer, like an index expression.
func (b *Buffer) ByteAt(i int) byte { return b.data[i] }

// Slice returns a read-only view of n bytes starting at start.
func (b *Buffer) Slice(start, n int) ([]byte, error) {
	if start < 0 || n < 0 || start > len(b.data)-n {
		return nil, fmt.Errorf("%w: start=%d len=%d size=%d", ErrOutOfRange, start, n, len(b.data))
	}
	return b.data[start : start+n : start+n], nil
}

// Bytes exposes the full content for pattern matching. The returned slice
// must be treated as read-only.
func (b *Buffer) Bytes() []byte { return b.data }
