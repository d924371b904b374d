package gguf

import "fmt"

// Version is the container format version from the header.
type Version uint32

const (
	Version1 Version = 1
	Version2 Version = 2
	Version3 Version = 3
)

func (v Version) Supported() bool {
	return v == Version1 || v == Version2 || v == Version3
}

// LengthWidth is the byte width of every count and length field for v.
func (v Version) LengthWidth() (int, error) {
	switch v {
	case Version1:
		return 4, nil
	case Version2, Version3:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, uint32(v))
	}
}

// ReadLength decodes a count or length field whose width depends on v and
// returns the value with the number of bytes consumed.
func ReadLength(c *Cursor, v Version) (uint64, int, error) {
	width, err := v.LengthWidth()
	if err != nil {
		return 0, 0, err
	}
	if width == 4 {
		n, err := c.ReadU32()
		if err != nil {
			return 0, 0, err
		}
		return uint64(n), width, nil
	}
	n, err := c.ReadU64()
	if err != nil {
		return 0, 0, err
	}
	return n, width, nil
}
