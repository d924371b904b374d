// Package inspect turns a parsed container into a report for people and tools.
package inspect

import (
	"math"
	"strconv"

	"github.com/samcharles93/ggufscope/pkg/gguf"
)

// DefaultArrayLimit caps how many array elements a report carries.
const DefaultArrayLimit = 100

type Options struct {
	// ArrayLimit caps array elements per value; 0 means DefaultArrayLimit and
	// a negative value keeps every element.
	ArrayLimit int
}

func (o Options) arrayLimit() int {
	if o.ArrayLimit == 0 {
		return DefaultArrayLimit
	}
	return o.ArrayLimit
}

type Report struct {
	ID            string         `json:"id,omitempty"`
	Path          string         `json:"path,omitempty"`
	Size          int64          `json:"size,omitempty"`
	Version       uint32         `json:"version"`
	TensorCount   uint64         `json:"tensor_count"`
	KVCount       uint64         `json:"kv_count"`
	Alignment     uint64         `json:"alignment"`
	HeaderSize    uint64         `json:"header_size"`
	DataOffset    uint64         `json:"data_offset"`
	Metadata      []MetadataItem `json:"metadata"`
	Tensors       []TensorItem   `json:"tensors"`
	DuplicateKeys []string       `json:"duplicate_keys,omitempty"`
}

type MetadataItem struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     any    `json:"value"`
	Length    int    `json:"length,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

type TensorItem struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	TypeCode uint32   `json:"type_code"`
	Dims     []uint64 `json:"dims"`
	Elements uint64   `json:"elements,omitempty"`
	Offset   uint64   `json:"offset"`
}

// Build summarizes f. Path and Size are left for the caller to fill.
func Build(f *gguf.Container, opts Options) *Report {
	r := &Report{
		Version:       uint32(f.Header.Version),
		TensorCount:   f.Header.TensorCount,
		KVCount:       f.Header.KVCount,
		Alignment:     f.Alignment(),
		HeaderSize:    f.HeaderSize(),
		DataOffset:    f.DataOffset(),
		Metadata:      make([]MetadataItem, 0, len(f.Metadata)),
		Tensors:       make([]TensorItem, 0, len(f.Tensors)),
		DuplicateKeys: f.DuplicateKeys(),
	}

	limit := opts.arrayLimit()
	for _, e := range f.Metadata {
		r.Metadata = append(r.Metadata, metadataItem(e, limit))
	}
	for _, t := range f.Tensors {
		n, _ := t.Elements()
		r.Tensors = append(r.Tensors, TensorItem{
			Name:     t.Name,
			Type:     t.Type.String(),
			TypeCode: uint32(t.Type),
			Dims:     t.Dims,
			Elements: n,
			Offset:   t.Offset,
		})
	}
	return r
}

func metadataItem(e gguf.MetadataEntry, limit int) MetadataItem {
	item := MetadataItem{Key: e.Key, Type: typeName(e.Value)}
	if e.Value.Kind() == gguf.KindArray {
		item.Length = e.Value.Len()
	}
	item.Value, item.Truncated = jsonValue(e.Value, limit)
	return item
}

// typeName renders arrays as array[elem], recursing into nested arrays.
func typeName(v gguf.Value) string {
	elem, ok := v.Elem()
	if !ok {
		return v.Kind().String()
	}
	if first, ok := v.Index(0); ok && elem == gguf.KindArray {
		return "array[" + typeName(first) + "]"
	}
	return "array[" + elem.String() + "]"
}

// jsonValue converts v for JSON output, keeping at most limit elements of
// every array at any depth (negative keeps all). It reports whether any
// array was cut. Non-finite floats become strings since JSON has no encoding
// for them.
func jsonValue(v gguf.Value, limit int) (any, bool) {
	switch v.Kind() {
	case gguf.KindFloat32, gguf.KindFloat64:
		f, _ := v.AsFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64), false
		}
		return v.Interface(), false
	case gguf.KindArray:
		n := v.Len()
		truncated := limit >= 0 && n > limit
		if truncated {
			n = limit
		}
		out := make([]any, n)
		for i := range n {
			e, _ := v.Index(i)
			var cut bool
			out[i], cut = jsonValue(e, limit)
			truncated = truncated || cut
		}
		return out, truncated
	default:
		return v.Interface(), false
	}
}
