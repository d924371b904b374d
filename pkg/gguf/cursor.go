package gguf

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Cursor is a bounds-checked sequential reader over a fixed byte buffer.
// The offset only moves forward, and only after a read has succeeded.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewCursorAt returns a cursor positioned at off. An off past the end of buf
// is clamped so that every subsequent read fails with ErrOutOfBounds.
func NewCursorAt(buf []byte, off int) *Cursor {
	if off < 0 || off > len(buf) {
		off = len(buf)
	}
	return &Cursor{buf: buf, off: off}
}

func (c *Cursor) Offset() int { return c.off }

func (c *Cursor) Len() int { return len(c.buf) }

func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// span checks that width*count bytes are available at the current offset
// and returns the byte count.
func (c *Cursor) span(width, count uint64) (int, error) {
	hi, n := bits.Mul64(width, count)
	if hi != 0 || n > uint64(c.Remaining()) {
		return 0, fmt.Errorf("%w: need %d*%d bytes at offset %d, buffer is %d bytes",
			ErrOutOfBounds, width, count, c.off, len(c.buf))
	}
	return int(n), nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read length %d", ErrOutOfBounds, n)
	}
	size, err := c.span(uint64(n), 1)
	if err != nil {
		return nil, err
	}
	return c.buf[c.off : c.off+size : c.off+size], nil
}

// ReadFixed returns count back-to-back elements of width bytes and advances
// past them. The returned slice aliases the underlying buffer.
func (c *Cursor) ReadFixed(width, count uint64) ([]byte, error) {
	size, err := c.span(width, count)
	if err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+size : c.off+size]
	c.off += size
	return b, nil
}

func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read length %d", ErrOutOfBounds, n)
	}
	return c.ReadFixed(uint64(n), 1)
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.ReadFixed(1, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.ReadFixed(2, 1)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.ReadFixed(4, 1)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.ReadFixed(8, 1)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
