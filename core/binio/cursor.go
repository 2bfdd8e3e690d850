// Package binio provides an endian-aware read cursor over a seekable byte source.
package binio

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrTruncatedInput is returned when fewer bytes remain than a read requires.
var ErrTruncatedInput = errors.New("binio: truncated input")

// Cursor reads fixed-size integers from r. It keeps no buffer of its own;
// the position is whatever the underlying source reports and is moved only
// by reads and explicit Seek calls.
type Cursor struct {
	r io.ReadSeeker
}

// New returns a Cursor over r.
func New(r io.ReadSeeker) *Cursor {
	return &Cursor{r: r}
}

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(offset int64) error {
	_, err := c.r.Seek(offset, io.SeekStart)
	return err
}

// Offset reports the current absolute position.
func (c *Cursor) Offset() (int64, error) {
	return c.r.Seek(0, io.SeekCurrent)
}

// ReadU16 reads two bytes in the given byte order.
func (c *Cursor) ReadU16(order binary.ByteOrder) (uint16, error) {
	var b [2]byte
	if err := c.fill(b[:]); err != nil {
		return 0, err
	}
	return order.Uint16(b[:]), nil
}

// ReadU32 reads four bytes in the given byte order.
func (c *Cursor) ReadU32(order binary.ByteOrder) (uint32, error) {
	var b [4]byte
	if err := c.fill(b[:]); err != nil {
		return 0, err
	}
	return order.Uint32(b[:]), nil
}

// ReadBytes reads exactly n bytes, looping over short reads.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrTruncatedInput
	}
	p := make([]byte, n)
	if err := c.fill(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Cursor) fill(p []byte) error {
	_, err := io.ReadFull(c.r, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedInput
	}
	return err
}
