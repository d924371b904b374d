package gguf

import (
	"fmt"
	"unicode/utf8"
)

// ReadString decodes a length-prefixed UTF-8 string. The consumed count is
// the length field width plus the string byte length; there is no terminator.
func ReadString(c *Cursor, v Version) (string, uint64, error) {
	start := c.off
	n, width, err := ReadLength(c, v)
	if err != nil {
		return "", 0, err
	}
	b, err := c.ReadFixed(n, 1)
	if err != nil {
		c.off = start
		return "", 0, fmt.Errorf("string of %d bytes: %w", n, err)
	}
	if !utf8.Valid(b) {
		c.off = start
		return "", 0, fmt.Errorf("%w: %d bytes at offset %d", ErrInvalidEncoding, n, start+width)
	}
	return string(b), uint64(width) + n, nil
}
