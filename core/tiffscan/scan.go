package tiffscan

import (
	"bytes"
	"encoding/binary"

	"github.com/ankit-chaubey/media-metadata-convert/core/binio"
)

const tiffMagic = 42

// ExtractTagPacket returns the raw value of the first entry in the first IFD
// of buf whose id is tag and whose type is Byte or Undefined.
//
// Any marker other than "II" is read as big-endian. A wrong magic number,
// a missing tag or a truncated structure all report false; the function never
// fails on malformed input.
func ExtractTagPacket(buf []byte, tag uint16) ([]byte, bool) {
	c := binio.New(bytes.NewReader(buf))

	marker, err := c.ReadU16(binary.BigEndian)
	if err != nil {
		return nil, false
	}
	var order binary.ByteOrder = binary.BigEndian
	if marker == 0x4949 {
		order = binary.LittleEndian
	}

	magic, err := c.ReadU16(order)
	if err != nil || magic != tiffMagic {
		return nil, false
	}

	ifd, err := c.ReadU32(order)
	if err != nil {
		return nil, false
	}
	if err := c.Seek(int64(ifd)); err != nil {
		return nil, false
	}

	n, err := c.ReadU16(order)
	if err != nil {
		return nil, false
	}
	for i := 0; i < int(n); i++ {
		e, raw, err := readEntry(c, order)
		if err != nil {
			return nil, false
		}
		if e.Tag != tag || (e.Type != Byte && e.Type != Undefined) {
			continue
		}
		if e.inline() {
			return raw[:e.Count], true
		}
		if err := c.Seek(int64(e.ValueOffset)); err != nil {
			return nil, false
		}
		if uint64(e.Count) > uint64(len(buf)) {
			return nil, false
		}
		p, err := c.ReadBytes(int(e.Count))
		if err != nil {
			return nil, false
		}
		return p, true
	}
	return nil, false
}

// readEntry reads tag(2) type(2) count(4) offset(4). raw holds the four
// offset bytes as stored, for values small enough to live inline.
func readEntry(c *binio.Cursor, order binary.ByteOrder) (Entry, []byte, error) {
	var e Entry
	tag, err := c.ReadU16(order)
	if err != nil {
		return e, nil, err
	}
	typ, err := c.ReadU16(order)
	if err != nil {
		return e, nil, err
	}
	count, err := c.ReadU32(order)
	if err != nil {
		return e, nil, err
	}
	raw, err := c.ReadBytes(4)
	if err != nil {
		return e, nil, err
	}
	e = Entry{Tag: tag, Type: DataType(typ), Count: count, ValueOffset: order.Uint32(raw)}
	return e, raw, nil
}
