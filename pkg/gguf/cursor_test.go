package gguf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReadFixed(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{1, 2, 3, 4, 5, 6})
	b, err := c.ReadFixed(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)
	assert.Equal(t, 4, c.Offset())
	assert.Equal(t, 2, c.Remaining())

	_, err = c.ReadFixed(1, 3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 4, c.Offset(), "failed read must not advance")

	b, err = c.ReadFixed(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, b)
	assert.Equal(t, 0, c.Remaining())
}

func TestCursorReadFixedOverflow(t *testing.T) {
	t.Parallel()

	c := NewCursor(make([]byte, 16))
	_, err := c.ReadFixed(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = c.ReadFixed(1<<33, 1<<33)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 0, c.Offset())
}

func TestCursorPeekDoesNotAdvance(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{0xaa, 0xbb})
	b, err := c.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb}, b)
	assert.Equal(t, 0, c.Offset())

	_, err = c.Peek(3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = c.Read(-1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCursorLittleEndian(t *testing.T) {
	t.Parallel()

	c := NewCursor(newBuilder(Version3).u8(7).u16(0x0102).u32(0x01020304).u64(0x0102030405060708).bytes())
	u8, err := c.ReadU8()
	require.NoError(t, err)
	u16, err := c.ReadU16()
	require.NoError(t, err)
	u32, err := c.ReadU32()
	require.NoError(t, err)
	u64, err := c.ReadU64()
	require.NoError(t, err)

	assert.Equal(t, uint8(7), u8)
	assert.Equal(t, uint16(0x0102), u16)
	assert.Equal(t, uint32(0x01020304), u32)
	assert.Equal(t, uint64(0x0102030405060708), u64)
	assert.Equal(t, 15, c.Offset())
}

func TestNewCursorAtClamps(t *testing.T) {
	t.Parallel()

	c := NewCursorAt([]byte{1, 2, 3}, 2)
	assert.Equal(t, 1, c.Remaining())

	c = NewCursorAt([]byte{1, 2, 3}, 10)
	assert.Equal(t, 0, c.Remaining())
	_, err := c.ReadU8()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
