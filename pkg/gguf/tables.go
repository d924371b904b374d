package gguf

import (
	"fmt"
	"math/bits"
)

// MetadataEntry is one key/value pair from the metadata table.
type MetadataEntry struct {
	Key   string
	Value Value
}

// TensorDescriptor describes one tensor without its payload. Offset is
// relative to the start of the tensor data section.
type TensorDescriptor struct {
	Name   string
	Dims   []uint64
	Type   TensorType
	Offset uint64
}

// Elements is the product of Dims. A tensor with no dims is a scalar.
func (t TensorDescriptor) Elements() (uint64, error) {
	n := uint64(1)
	for _, d := range t.Dims {
		hi, lo := bits.Mul64(n, d)
		if hi != 0 {
			return 0, fmt.Errorf("tensor %s: element count overflows", t.Name)
		}
		n = lo
	}
	return n, nil
}

// ReadMetadataTable decodes count key/value entries. A failure in any entry
// fails the whole table, since later entries have no known start offset.
func ReadMetadataTable(c *Cursor, v Version, count uint64, opts Options) ([]MetadataEntry, uint64, error) {
	depth := opts.maxDepth()
	start := c.off
	entries := make([]MetadataEntry, 0, min(count, uint64(c.Remaining())))
	var consumed uint64
	for i := range count {
		entryStart := c.off
		fail := func(key string, err error) ([]MetadataEntry, uint64, error) {
			c.off = start
			return nil, 0, &ParseError{Stage: StageMetadata, Index: int64(i), Key: key, Offset: uint64(entryStart), Err: err}
		}

		key, kn, err := ReadString(c, v)
		if err != nil {
			return fail("", fmt.Errorf("key: %w", err))
		}
		tag, err := c.ReadU32()
		if err != nil {
			return fail(key, fmt.Errorf("value kind: %w", err))
		}
		val, vn, err := readValue(c, ValueKind(tag), v, depth)
		if err != nil {
			return fail(key, err)
		}
		entries = append(entries, MetadataEntry{Key: key, Value: val})
		consumed += kn + 4 + vn
	}
	return entries, consumed, nil
}

// ReadTensorTable decodes count tensor descriptors.
func ReadTensorTable(c *Cursor, v Version, count uint64) ([]TensorDescriptor, uint64, error) {
	width, err := v.LengthWidth()
	if err != nil {
		return nil, 0, err
	}
	start := c.off
	tensors := make([]TensorDescriptor, 0, min(count, uint64(c.Remaining())))
	var consumed uint64
	for i := range count {
		entryStart := c.off
		fail := func(name string, err error) ([]TensorDescriptor, uint64, error) {
			c.off = start
			return nil, 0, &ParseError{Stage: StageTensors, Index: int64(i), Key: name, Offset: uint64(entryStart), Err: err}
		}

		name, nn, err := ReadString(c, v)
		if err != nil {
			return fail("", fmt.Errorf("name: %w", err))
		}
		nDims, err := c.ReadU32()
		if err != nil {
			return fail(name, fmt.Errorf("dim count: %w", err))
		}
		if _, err := c.span(uint64(width), uint64(nDims)); err != nil {
			return fail(name, fmt.Errorf("%d dims: %w", nDims, err))
		}
		dims := make([]uint64, nDims)
		for d := range dims {
			dims[d], _, err = ReadLength(c, v)
			if err != nil {
				return fail(name, fmt.Errorf("dim %d: %w", d, err))
			}
		}
		ttype, err := c.ReadU32()
		if err != nil {
			return fail(name, fmt.Errorf("element type: %w", err))
		}
		offset, err := c.ReadU64()
		if err != nil {
			return fail(name, fmt.Errorf("data offset: %w", err))
		}
		tensors = append(tensors, TensorDescriptor{
			Name:   name,
			Dims:   dims,
			Type:   TensorType(ttype),
			Offset: offset,
		})
		consumed += nn + 4 + uint64(nDims)*uint64(width) + 4 + 8
	}
	return tensors, consumed, nil
}
