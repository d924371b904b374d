package gguf

import (
	"encoding/binary"
	"fmt"
)

// DefaultMaxDepth bounds array nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 64

// ReadValue decodes one value of the given kind and returns it with the number
// of bytes consumed. Arrays may nest up to DefaultMaxDepth levels.
func ReadValue(c *Cursor, kind ValueKind, v Version) (Value, uint64, error) {
	return readValue(c, kind, v, DefaultMaxDepth)
}

// ReadValueDepth is ReadValue with an explicit array nesting limit.
func ReadValueDepth(c *Cursor, kind ValueKind, v Version, maxDepth int) (Value, uint64, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return readValue(c, kind, v, maxDepth)
}

func readValue(c *Cursor, kind ValueKind, v Version, depth int) (Value, uint64, error) {
	if w := kind.FixedWidth(); w > 0 {
		b, err := c.ReadFixed(uint64(w), 1)
		if err != nil {
			return Value{}, 0, fmt.Errorf("%s value: %w", kind, err)
		}
		var bits uint64
		switch w {
		case 1:
			bits = uint64(b[0])
		case 2:
			bits = uint64(binary.LittleEndian.Uint16(b))
		case 4:
			bits = uint64(binary.LittleEndian.Uint32(b))
		default:
			bits = binary.LittleEndian.Uint64(b)
		}
		return Value{kind: kind, bits: bits}, uint64(w), nil
	}

	switch kind {
	case KindString:
		s, n, err := ReadString(c, v)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{kind: KindString, str: s}, n, nil
	case KindArray:
		return readArray(c, v, depth)
	default:
		return Value{}, 0, fmt.Errorf("%w: %d", ErrUnknownValueKind, uint32(kind))
	}
}

func readArray(c *Cursor, v Version, depth int) (Value, uint64, error) {
	if depth <= 0 {
		return Value{}, 0, fmt.Errorf("%w at offset %d", ErrNestingTooDeep, c.off)
	}
	start := c.off
	fail := func(err error) (Value, uint64, error) {
		c.off = start
		return Value{}, 0, err
	}

	tag, err := c.ReadU32()
	if err != nil {
		return fail(fmt.Errorf("array element kind: %w", err))
	}
	elem := ValueKind(tag)
	if !elem.Valid() {
		return fail(fmt.Errorf("array element %w: %d", ErrUnknownValueKind, tag))
	}
	count, width, err := ReadLength(c, v)
	if err != nil {
		return fail(fmt.Errorf("array length: %w", err))
	}

	// Reject counts the remaining bytes cannot hold before allocating.
	if _, err := c.span(minEncodedSize(elem, width), count); err != nil {
		return fail(fmt.Errorf("array of %d %s: %w", count, elem, err))
	}

	consumed := uint64(4 + width)
	if w := elem.FixedWidth(); w > 0 {
		raw, err := c.ReadFixed(uint64(w), count)
		if err != nil {
			return fail(fmt.Errorf("array of %d %s: %w", count, elem, err))
		}
		return fixedArray(elem, raw), consumed + uint64(len(raw)), nil
	}

	if elem == KindString {
		strs := make([]string, 0, count)
		for i := range count {
			s, n, err := ReadString(c, v)
			if err != nil {
				return fail(fmt.Errorf("array element %d: %w", i, err))
			}
			strs = append(strs, s)
			consumed += n
		}
		return Value{kind: KindArray, elem: elem, list: strs}, consumed, nil
	}

	values := make([]Value, 0, count)
	for i := range count {
		val, n, err := readValue(c, elem, v, depth-1)
		if err != nil {
			return fail(fmt.Errorf("array element %d: %w", i, err))
		}
		values = append(values, val)
		consumed += n
	}
	return Value{kind: KindArray, elem: elem, list: values}, consumed, nil
}

// minEncodedSize is the smallest possible encoding of one value of kind k.
func minEncodedSize(k ValueKind, lengthWidth int) uint64 {
	switch k {
	case KindString:
		return uint64(lengthWidth)
	case KindArray:
		return uint64(4 + lengthWidth)
	default:
		return uint64(k.FixedWidth())
	}
}
