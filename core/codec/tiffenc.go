package codec

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ankit-chaubey/media-metadata-convert/core/rdf"
	"github.com/ankit-chaubey/media-metadata-convert/core/tiffscan"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// Baseline tags the writer owns in IFD0.
const (
	tagImageWidth      uint16 = 256
	tagImageLength     uint16 = 257
	tagBitsPerSample   uint16 = 258
	tagCompression     uint16 = 259
	tagPhotometric     uint16 = 262
	tagStripOffsets    uint16 = 273
	tagSamplesPerPixel uint16 = 277
	tagRowsPerStrip    uint16 = 278
	tagStripByteCounts uint16 = 279
)

var reservedTags = map[uint16]bool{
	tagImageWidth:      true,
	tagImageLength:     true,
	tagBitsPerSample:   true,
	tagCompression:     true,
	tagPhotometric:     true,
	tagStripOffsets:    true,
	tagSamplesPerPixel: true,
	tagRowsPerStrip:    true,
	tagStripByteCounts: true,
	tagExifIFD:         true,
	tagGPSIFD:          true,
	tagInteropIFD:      true,
	tiffscan.TagXMP:    true,
	tiffscan.TagIPTC:   true,
}

var le = binary.LittleEndian

// field is one directory entry with its value already encoded.
type field struct {
	tag   uint16
	typ   tiffscan.DataType
	count uint32
	data  []byte
}

// ifdBlock is a directory plus the sub-directories it points at.
type ifdBlock struct {
	fields []field
	subs   []subBlock
	offset uint32
}

type subBlock struct {
	tag   uint16
	block *ifdBlock
}

func (b *ifdBlock) set(f field) {
	for i := range b.fields {
		if b.fields[i].tag == f.tag {
			b.fields[i] = f
			return
		}
	}
	b.fields = append(b.fields, f)
}

func (b *ifdBlock) setLong(tag uint16, v uint32) {
	b.set(field{tag: tag, typ: tiffscan.Long, count: 1, data: le.AppendUint32(nil, v)})
}

func (b *ifdBlock) setShort(tag uint16, v uint16) {
	b.set(field{tag: tag, typ: tiffscan.Short, count: 1, data: le.AppendUint16(nil, v)})
}

// size is the table plus out-of-line values, each padded to a word.
func (b *ifdBlock) size() uint32 {
	n := uint32(2 + 12*len(b.fields) + 4)
	for _, f := range b.fields {
		if l := uint32(len(f.data)); l > 4 {
			n += l + l&1
		}
	}
	return n
}

// layout assigns offsets depth-first starting at pos and returns the end.
func (b *ifdBlock) layout(pos uint32) uint32 {
	b.offset = pos
	pos += b.size()
	for _, s := range b.subs {
		pos = s.block.layout(pos)
		b.setLong(s.tag, s.block.offset)
	}
	return pos
}

func (b *ifdBlock) put(buf []byte) {
	sort.Slice(b.fields, func(i, j int) bool { return b.fields[i].tag < b.fields[j].tag })

	p := b.offset
	ext := p + uint32(2+12*len(b.fields)+4)
	le.PutUint16(buf[p:], uint16(len(b.fields)))
	p += 2
	for _, f := range b.fields {
		le.PutUint16(buf[p:], f.tag)
		le.PutUint16(buf[p+2:], uint16(f.typ))
		le.PutUint32(buf[p+4:], f.count)
		if len(f.data) <= 4 {
			copy(buf[p+8:p+12], f.data)
		} else {
			le.PutUint32(buf[p+8:], ext)
			copy(buf[ext:], f.data)
			l := uint32(len(f.data))
			ext += l + l&1
		}
		p += 12
	}
	// next IFD offset stays zero
	for _, s := range b.subs {
		s.block.put(buf)
	}
}

// encodeTIFF writes img as a single-strip uncompressed 8-bit gray TIFF with
// the /ifd part of md as its directories.
func encodeTIFF(w io.Writer, img image.Image, md *tree.Node, log *zap.Logger) error {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return errors.Errorf("tiff: unsupported image size %dx%d", width, height)
	}
	pix := grayPixels(img)

	ifd0 := &ifdBlock{}
	if md != nil {
		if v, err := md.GetQuery("/ifd"); err == nil {
			n, ok := v.(*tree.Node)
			if !ok {
				return errors.New("tiff: /ifd is not a directory")
			}
			if err := fillIFD(ifd0, n, log); err != nil {
				return err
			}
		}
	}
	ifd0.setShort(tagImageWidth, uint16(width))
	ifd0.setShort(tagImageLength, uint16(height))
	ifd0.setShort(tagBitsPerSample, 8)
	ifd0.setShort(tagCompression, 1)
	ifd0.setShort(tagPhotometric, 1)
	ifd0.setShort(tagSamplesPerPixel, 1)
	ifd0.setShort(tagRowsPerStrip, uint16(height))
	ifd0.setLong(tagStripByteCounts, uint32(len(pix)))
	// placeholder so the table size is final before layout
	ifd0.setLong(tagStripOffsets, 0)

	end := ifd0.layout(8)
	ifd0.setLong(tagStripOffsets, end)

	buf := make([]byte, int(end)+len(pix))
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)
	ifd0.put(buf)
	copy(buf[end:], pix)

	_, err := w.Write(buf)
	return err
}

func grayPixels(img image.Image) []byte {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && g.Stride == b.Dx() {
		return append([]byte(nil), g.Pix[:b.Dx()*b.Dy()]...)
	}
	pix := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pix = append(pix, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return pix
}

// fillIFD copies the entries of an ifd node into b. Values the writer
// cannot represent are skipped and logged.
func fillIFD(b *ifdBlock, n *tree.Node, log *zap.Logger) error {
	for _, e := range n.Entries() {
		if id, ok := tree.ParseUShort(e.Segment); ok {
			if reservedTags[id] {
				continue
			}
			f, ok := scalarField(id, e.Value)
			if !ok {
				log.Debug("tiff: skipped field", zap.String("segment", e.Segment))
				continue
			}
			b.set(f)
			continue
		}

		switch e.Segment {
		case "/exif", "/gps", "/interop":
			sub, ok := e.Value.(*tree.Node)
			if !ok {
				log.Debug("tiff: skipped non-directory", zap.String("segment", e.Segment))
				continue
			}
			child := &ifdBlock{}
			if err := fillIFD(child, sub, log); err != nil {
				return err
			}
			tag := map[string]uint16{"/exif": tagExifIFD, "/gps": tagGPSIFD, "/interop": tagInteropIFD}[e.Segment]
			b.subs = append(b.subs, subBlock{tag: tag, block: child})
			b.setLong(tag, 0)
		case "/xmp":
			packet, err := xmpPacket(e.Value)
			if err != nil {
				return errors.Wrap(err, "tiff: xmp")
			}
			b.set(field{tag: tiffscan.TagXMP, typ: tiffscan.Byte, count: uint32(len(packet)), data: packet})
		case "/iptc":
			data, err := iptcBlock(e.Value)
			if err != nil {
				return errors.Wrap(err, "tiff")
			}
			b.set(field{tag: tiffscan.TagIPTC, typ: tiffscan.Undefined, count: uint32(len(data)), data: data})
		default:
			log.Debug("tiff: skipped entry", zap.String("segment", e.Segment))
		}
	}
	return nil
}

func xmpPacket(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case *tree.Node:
		return rdf.Encode(v)
	}
	return nil, errors.Errorf("unsupported value %T", v)
}

func iptcBlock(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case *tree.Node:
		return encodeIIM(v)
	}
	return nil, errors.Errorf("iptc: unsupported value %T", v)
}

// scalarField encodes a tree scalar as the closest TIFF field type.
func scalarField(tag uint16, v any) (field, bool) {
	f := field{tag: tag, count: 1}
	switch v := v.(type) {
	case string:
		f.typ, f.data = tiffscan.Ascii, append([]byte(v), 0)
		f.count = uint32(len(f.data))
	case []byte:
		f.typ, f.data = tiffscan.Undefined, v
		f.count = uint32(len(v))
	case bool:
		f.typ, f.data = tiffscan.Byte, []byte{0}
		if v {
			f.data[0] = 1
		}
	case uint8:
		f.typ, f.data = tiffscan.Byte, []byte{v}
	case int8:
		f.typ, f.data = tiffscan.SByte, []byte{byte(v)}
	case uint16:
		f.typ, f.data = tiffscan.Short, le.AppendUint16(nil, v)
	case int16:
		f.typ, f.data = tiffscan.SShort, le.AppendUint16(nil, uint16(v))
	case uint32:
		f.typ, f.data = tiffscan.Long, le.AppendUint32(nil, v)
	case uint:
		f.typ, f.data = tiffscan.Long, le.AppendUint32(nil, uint32(v))
	case uint64:
		f.typ, f.data = tiffscan.Long, le.AppendUint32(nil, uint32(v))
	case int32:
		f.typ, f.data = tiffscan.SLong, le.AppendUint32(nil, uint32(v))
	case int:
		f.typ, f.data = tiffscan.SLong, le.AppendUint32(nil, uint32(int32(v)))
	case int64:
		f.typ, f.data = tiffscan.SLong, le.AppendUint32(nil, uint32(int32(v)))
	case float32:
		f.typ, f.data = tiffscan.Float, le.AppendUint32(nil, math.Float32bits(v))
	case float64:
		f.typ, f.data = tiffscan.Double, le.AppendUint64(nil, math.Float64bits(v))
	case []uint16:
		f.typ, f.count = tiffscan.Short, uint32(len(v))
		for _, x := range v {
			f.data = le.AppendUint16(f.data, x)
		}
	case []uint32:
		f.typ, f.count = tiffscan.Long, uint32(len(v))
		for _, x := range v {
			f.data = le.AppendUint32(f.data, x)
		}
	case []int64:
		f.typ, f.count = tiffscan.SLong, uint32(len(v))
		for _, x := range v {
			f.data = le.AppendUint32(f.data, uint32(int32(x)))
		}
	default:
		return field{}, false
	}
	if f.count == 0 {
		return field{}, false
	}
	return f, true
}
