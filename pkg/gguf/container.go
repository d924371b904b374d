package gguf

import "fmt"

const (
	magicGGUF = "GGUF"

	// DefaultAlignment applies when general.alignment is absent or unusable.
	DefaultAlignment = 32
	KeyAlignment     = "general.alignment"
)

// Options tunes a parse. The zero value is ready to use.
type Options struct {
	// MaxDepth bounds array nesting in metadata values. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

type Header struct {
	Version     Version
	TensorCount uint64
	KVCount     uint64
}

// Container is a parsed GGUF header with its metadata and tensor tables.
// It does not retain the source buffer.
type Container struct {
	Header Header
	// Metadata holds every entry in file order, duplicates included.
	Metadata []MetadataEntry
	Tensors  []TensorDescriptor

	keyIndex    map[string]int
	tensorIndex map[string]int
	duplicates  []string
	size        uint64
}

// Parse decodes the container at the start of buf.
func Parse(buf []byte) (*Container, error) {
	return ParseWithOptions(buf, Options{})
}

func ParseWithOptions(buf []byte, opts Options) (*Container, error) {
	c := NewCursor(buf)
	headerErr := func(stage Stage, err error) error {
		return &ParseError{Stage: stage, Index: -1, Offset: uint64(c.Offset()), Err: err}
	}

	magic, err := c.Read(len(magicGGUF))
	if err != nil {
		return nil, headerErr(StageMagic, err)
	}
	if string(magic) != magicGGUF {
		return nil, headerErr(StageMagic, fmt.Errorf("%w: %q", ErrBadMagic, magic))
	}

	raw, err := c.ReadU32()
	if err != nil {
		return nil, headerErr(StageVersion, err)
	}
	version := Version(raw)
	if !version.Supported() {
		return nil, headerErr(StageVersion, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw))
	}

	tensorCount, _, err := ReadLength(c, version)
	if err != nil {
		return nil, headerErr(StageCounts, fmt.Errorf("tensor count: %w", err))
	}
	kvCount, _, err := ReadLength(c, version)
	if err != nil {
		return nil, headerErr(StageCounts, fmt.Errorf("metadata count: %w", err))
	}

	metadata, _, err := ReadMetadataTable(c, version, kvCount, opts)
	if err != nil {
		return nil, err
	}
	tensors, _, err := ReadTensorTable(c, version, tensorCount)
	if err != nil {
		return nil, err
	}

	out := &Container{
		Header:   Header{Version: version, TensorCount: tensorCount, KVCount: kvCount},
		Metadata: metadata,
		Tensors:  tensors,
		size:     uint64(c.Offset()),
	}
	out.buildIndex()
	return out, nil
}

func (f *Container) buildIndex() {
	f.keyIndex = make(map[string]int, len(f.Metadata))
	for i, e := range f.Metadata {
		if _, seen := f.keyIndex[e.Key]; seen {
			f.duplicates = append(f.duplicates, e.Key)
		}
		// last write wins
		f.keyIndex[e.Key] = i
	}
	f.tensorIndex = make(map[string]int, len(f.Tensors))
	for i, t := range f.Tensors {
		if _, seen := f.tensorIndex[t.Name]; !seen {
			f.tensorIndex[t.Name] = i
		}
	}
}

// Lookup returns the value of the last entry with key.
func (f *Container) Lookup(key string) (Value, bool) {
	i, ok := f.keyIndex[key]
	if !ok {
		return Value{}, false
	}
	return f.Metadata[i].Value, true
}

// Keys returns each distinct key once, in order of first appearance.
func (f *Container) Keys() []string {
	keys := make([]string, 0, len(f.keyIndex))
	seen := make(map[string]struct{}, len(f.keyIndex))
	for _, e := range f.Metadata {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		keys = append(keys, e.Key)
	}
	return keys
}

// DuplicateKeys lists keys that appeared more than once, once per repeat.
// Lookup returns the last occurrence of each.
func (f *Container) DuplicateKeys() []string {
	return f.duplicates
}

func (f *Container) Tensor(i int) (TensorDescriptor, bool) {
	if i < 0 || i >= len(f.Tensors) {
		return TensorDescriptor{}, false
	}
	return f.Tensors[i], true
}

// TensorByName returns the first tensor called name.
func (f *Container) TensorByName(name string) (TensorDescriptor, bool) {
	i, ok := f.tensorIndex[name]
	if !ok {
		return TensorDescriptor{}, false
	}
	return f.Tensors[i], true
}

// HeaderSize is the number of bytes consumed by the header and both tables.
func (f *Container) HeaderSize() uint64 {
	return f.size
}

// Alignment is general.alignment when it holds a positive integer, else
// DefaultAlignment.
func (f *Container) Alignment() uint64 {
	if v, ok := f.Lookup(KeyAlignment); ok {
		if n, ok := v.AsUint64(); ok && n > 0 {
			return n
		}
	}
	return DefaultAlignment
}

// DataOffset is where the tensor data section starts: HeaderSize padded up
// to Alignment. Tensor offsets are relative to it.
func (f *Container) DataOffset() uint64 {
	return align(f.size, f.Alignment())
}

func align(offset, alignment uint64) uint64 {
	if alignment == 0 {
		return offset
	}
	rem := offset % alignment
	if rem == 0 {
		return offset
	}
	return offset + (alignment - rem)
}
