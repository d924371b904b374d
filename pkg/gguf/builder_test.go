package gguf

import (
	"encoding/binary"
	"math"
)

// builder assembles little-endian GGUF bytes for tests.
type builder struct {
	buf []byte
	v   Version
}

func newBuilder(v Version) *builder {
	return &builder{v: v}
}

func (b *builder) raw(p ...byte) *builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *builder) u8(x uint8) *builder { return b.raw(x) }

func (b *builder) u16(x uint16) *builder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, x)
	return b
}

func (b *builder) u32(x uint32) *builder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, x)
	return b
}

func (b *builder) u64(x uint64) *builder {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, x)
	return b
}

func (b *builder) f32(x float32) *builder { return b.u32(math.Float32bits(x)) }

func (b *builder) f64(x float64) *builder { return b.u64(math.Float64bits(x)) }

// length writes a count field with the width the builder's version uses.
func (b *builder) length(n uint64) *builder {
	if b.v == Version1 {
		return b.u32(uint32(n))
	}
	return b.u64(n)
}

func (b *builder) str(s string) *builder {
	b.length(uint64(len(s)))
	return b.raw([]byte(s)...)
}

func (b *builder) header(tensors, kvs uint64) *builder {
	b.raw([]byte("GGUF")...)
	b.u32(uint32(b.v))
	b.length(tensors)
	return b.length(kvs)
}

func (b *builder) kvU32(key string, x uint32) *builder {
	return b.str(key).u32(uint32(KindUint32)).u32(x)
}

func (b *builder) kvString(key, s string) *builder {
	return b.str(key).u32(uint32(KindString)).str(s)
}

func (b *builder) tensor(name string, dims []uint64, typ TensorType, off uint64) *builder {
	b.str(name).u32(uint32(len(dims)))
	for _, d := range dims {
		b.length(d)
	}
	return b.u32(uint32(typ)).u64(off)
}

func (b *builder) bytes() []byte { return b.buf }

var allVersions = []Version{Version1, Version2, Version3}

func lengthWidth(v Version) uint64 {
	if v == Version1 {
		return 4
	}
	return 8
}
