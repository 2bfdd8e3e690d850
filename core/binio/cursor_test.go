package binio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEndianness(t *testing.T) {
	c := New(bytes.NewReader([]byte{0x01, 0x02, 0x01, 0x02, 0x03, 0x04}))

	v, err := c.ReadU16(binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	w, err := c.ReadU32(binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), w)
}

func TestSeekAndOffset(t *testing.T) {
	c := New(bytes.NewReader([]byte{0, 0, 0, 0, 0xAA, 0xBB}))
	require.NoError(t, c.Seek(4))

	off, err := c.Offset()
	require.NoError(t, err)
	assert.Equal(t, int64(4), off)

	v, err := c.ReadU16(binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xAABB), v)
}

func TestTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Cursor) error
	}{
		{"u16 empty", nil, func(c *Cursor) error { _, err := c.ReadU16(binary.BigEndian); return err }},
		{"u16 short", []byte{1}, func(c *Cursor) error { _, err := c.ReadU16(binary.BigEndian); return err }},
		{"u32 short", []byte{1, 2, 3}, func(c *Cursor) error { _, err := c.ReadU32(binary.LittleEndian); return err }},
		{"bytes short", []byte{1, 2}, func(c *Cursor) error { _, err := c.ReadBytes(3); return err }},
		{"bytes negative", []byte{1, 2}, func(c *Cursor) error { _, err := c.ReadBytes(-1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(New(bytes.NewReader(tt.data)))
			assert.ErrorIs(t, err, ErrTruncatedInput)
		})
	}
}

// oneByteReader returns at most one byte per Read.
type oneByteReader struct {
	*bytes.Reader
}

func (r oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return r.Reader.Read(p)
}

var _ io.ReadSeeker = oneByteReader{}

func TestReadBytesToleratesShortReads(t *testing.T) {
	c := New(oneByteReader{bytes.NewReader([]byte("packet"))})
	p, err := c.ReadBytes(6)
	require.NoError(t, err)
	assert.Equal(t, []byte("packet"), p)
}
