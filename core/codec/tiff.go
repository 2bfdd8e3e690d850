package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/multierr"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/rdf"
	"github.com/ankit-chaubey/media-metadata-convert/core/tiffscan"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// Pointer and blob tags handled specially inside an IFD.
const (
	tagExifIFD    uint16 = 0x8769
	tagGPSIFD     uint16 = 0x8825
	tagInteropIFD uint16 = 0xA005
	tagPhotoshop  uint16 = 0x8649
)

// subIFDs maps pointer tags to the node format of the directory they
// point at; the node is stored under "/" + format.
var subIFDs = map[uint16]string{
	tagExifIFD:    "exif",
	tagGPSIFD:     "gps",
	tagInteropIFD: "interop",
}

// decodeTIFF builds the tiff tree rooted at /ifd. A nil node means the
// container itself could not be read.
func decodeTIFF(data []byte) (*tree.Node, error) {
	t, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(t.Dirs) == 0 {
		return nil, errors.New("no IFD0")
	}

	md := tree.New(string(core.FmtTIFF))
	ifd, errs := ifdTree(data, t.Order, t.Dirs[0])
	if err := md.SetQuery("/ifd", ifd); err != nil {
		return nil, err
	}
	return md, errs
}

// ifdTree converts one directory into an "ifd" node. raw is the whole TIFF
// block that pointer offsets are relative to. Damaged sub-blocks are left
// out and reported through the returned error.
func ifdTree(raw []byte, order binary.ByteOrder, dir *tiff.Dir) (*tree.Node, error) {
	w := &ifdWalker{raw: raw, order: order, seen: map[uint32]bool{}}
	n := w.dir("ifd", dir)
	return n, w.errs
}

type ifdWalker struct {
	raw   []byte
	order binary.ByteOrder
	seen  map[uint32]bool
	errs  error
}

func (w *ifdWalker) dir(format string, dir *tiff.Dir) *tree.Node {
	n := tree.New(format)
	for _, tag := range dir.Tags {
		seg := tree.UShort(tag.Id)
		var (
			v   any
			err error
		)
		if name, ok := subIFDs[tag.Id]; ok {
			seg = "/" + name
			v, err = w.sub(name, tag)
		} else {
			switch tag.Id {
			case tiffscan.TagXMP:
				seg = "/xmp"
				v, err = xmpValue(tag.Val)
			case tiffscan.TagIPTC:
				seg = "/iptc"
				v, err = iimTree(tag.Val)
			case tagPhotoshop:
				seg = "/irb"
				v, err = irbTree(tag.Val)
			default:
				v, err = tagValue(tag, w.order)
			}
		}
		if err != nil {
			w.errs = multierr.Append(w.errs, errors.Wrapf(err, "tag %d", tag.Id))
			if v == nil {
				continue
			}
		}
		if err := n.SetQuery(seg, v); err != nil {
			w.errs = multierr.Append(w.errs, err)
		}
	}
	return n
}

func (w *ifdWalker) sub(format string, tag *tiff.Tag) (any, error) {
	if len(tag.Val) < 4 {
		return nil, errors.New("short IFD pointer")
	}
	off := w.order.Uint32(tag.Val)
	if w.seen[off] {
		return nil, errors.Errorf("IFD loop at offset %d", off)
	}
	w.seen[off] = true

	r := bytes.NewReader(w.raw)
	if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	dir, _, err := tiff.DecodeDir(r, w.order)
	if err != nil {
		return nil, err
	}
	return w.dir(format, dir), nil
}

// xmpValue parses an embedded packet. The raw bytes are kept when the
// packet is not valid RDF.
func xmpValue(packet []byte) (any, error) {
	x, err := rdf.Parse(packet)
	if err != nil {
		return append([]byte(nil), packet...), err
	}
	return x, nil
}

// tagValue maps a TIFF field onto a tree scalar. Rationals become "n/d"
// strings; single-element counts become plain scalars.
func tagValue(t *tiff.Tag, order binary.ByteOrder) (any, error) {
	switch t.Type {
	case tiff.DTAscii:
		return t.StringVal()
	case tiff.DTByte, tiff.DTSByte, tiff.DTUndefined:
		return append([]byte(nil), t.Val...), nil
	case tiff.DTShort:
		vs := make([]uint16, len(t.Val)/2)
		for i := range vs {
			vs[i] = order.Uint16(t.Val[2*i:])
		}
		if len(vs) == 1 {
			return vs[0], nil
		}
		return vs, nil
	case tiff.DTLong:
		vs := make([]uint32, len(t.Val)/4)
		for i := range vs {
			vs[i] = order.Uint32(t.Val[4*i:])
		}
		if len(vs) == 1 {
			return vs[0], nil
		}
		return vs, nil
	case tiff.DTSShort:
		vs := make([]int64, len(t.Val)/2)
		for i := range vs {
			vs[i] = int64(int16(order.Uint16(t.Val[2*i:])))
		}
		return collapse(vs), nil
	case tiff.DTSLong:
		vs := make([]int64, len(t.Val)/4)
		for i := range vs {
			vs[i] = int64(int32(order.Uint32(t.Val[4*i:])))
		}
		return collapse(vs), nil
	case tiff.DTRational, tiff.DTSRational:
		var buf bytes.Buffer
		for i := 0; i < int(t.Count); i++ {
			num, den, err := t.Rat2(i)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%d/%d", num, den)
		}
		return buf.String(), nil
	case tiff.DTFloat, tiff.DTDouble:
		return t.Float(0)
	}
	return nil, errors.Errorf("unsupported field type %d", t.Type)
}

func collapse(vs []int64) any {
	if len(vs) == 1 {
		return vs[0]
	}
	return vs
}
