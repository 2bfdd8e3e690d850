// Package xmppacket converts between a structured XMP subtree and the flat
// byte packet some containers store.
//
// The conversion goes through a synthetic single-pixel TIFF: the subtree is
// placed at /ifd/xmp of a throwaway tree, an Encoder serializes a 1x1
// grayscale image carrying it, and tag 700 is read back out of the bytes with
// the minimal IFD scanner. The reverse direction wraps the packet the same
// way and lets a Decoder rebuild the subtree. Transcoder is the seam that
// allows replacing the detour with direct binary synthesis.
package xmppacket

import (
	"bytes"
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/tiffscan"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// XMPPath is where a TIFF tree keeps its XMP subtree or packet.
const XMPPath = "/ifd/xmp"

// Transcoder turns an XMP subtree into a raw packet and back. Failures are
// reported as absence.
type Transcoder interface {
	Packet(xmp *tree.Node) ([]byte, bool)
	Subtree(packet []byte) (*tree.Node, bool)
}

// Encoder serializes img with the metadata md in the given container format.
type Encoder interface {
	Encode(w io.Writer, img image.Image, md *tree.Node, format core.Format) error
}

// Decoder reads the metadata tree of an encoded image.
type Decoder interface {
	DecodeMetadata(r io.Reader) (*tree.Node, core.Format, error)
}

// RoundTrip is the Transcoder backed by a synthetic TIFF.
type RoundTrip struct {
	enc Encoder
	dec Decoder
	log *zap.Logger
}

// Option configures a RoundTrip.
type Option func(*RoundTrip)

// WithLogger sets the logger used to report why a conversion gave up.
func WithLogger(l *zap.Logger) Option {
	return func(rt *RoundTrip) {
		rt.log = l
	}
}

// NewRoundTrip returns a RoundTrip using enc and dec as the image codec.
func NewRoundTrip(enc Encoder, dec Decoder, opts ...Option) *RoundTrip {
	rt := &RoundTrip{enc: enc, dec: dec, log: zap.NewNop()}
	for _, o := range opts {
		o(rt)
	}
	return rt
}

// SyntheticTree returns a fresh TIFF tree holding v at /ifd/xmp. v is either
// a raw packet ([]byte) or an XMP subtree, which is deep-copied.
func SyntheticTree(v any) *tree.Node {
	md := tree.New(string(core.FmtTIFF))
	switch v := v.(type) {
	case *tree.Node:
		_ = md.SetQuery(XMPPath, v.Clone())
	case []byte:
		_ = md.SetQuery(XMPPath, append([]byte(nil), v...))
	}
	return md
}

// Packet serializes xmp and returns the resulting packet bytes.
func (rt *RoundTrip) Packet(xmp *tree.Node) ([]byte, bool) {
	if xmp == nil {
		return nil, false
	}
	return rt.Extract(SyntheticTree(xmp))
}

// Extract encodes a synthetic TIFF tree and scans the output for the XMP tag.
func (rt *RoundTrip) Extract(md *tree.Node) ([]byte, bool) {
	buf, err := rt.encode(md)
	if err != nil {
		rt.log.Debug("synthetic tiff encode failed", zap.Error(err))
		return nil, false
	}
	packet, ok := tiffscan.ExtractTagPacket(buf, tiffscan.TagXMP)
	if !ok {
		rt.log.Debug("no xmp tag in synthetic tiff", zap.Int("size", len(buf)))
	}
	return packet, ok
}

// Subtree parses a raw packet into an XMP subtree by encoding it into a
// synthetic TIFF and decoding that again.
func (rt *RoundTrip) Subtree(packet []byte) (*tree.Node, bool) {
	if len(packet) == 0 {
		return nil, false
	}
	buf, err := rt.encode(SyntheticTree(packet))
	if err != nil {
		rt.log.Debug("synthetic tiff encode failed", zap.Error(err))
		return nil, false
	}
	md, _, err := rt.dec.DecodeMetadata(bytes.NewReader(buf))
	if err != nil {
		rt.log.Debug("synthetic tiff decode failed", zap.Error(err))
		return nil, false
	}
	v, err := md.GetQuery(XMPPath)
	if err != nil {
		return nil, false
	}
	xmp, ok := v.(*tree.Node)
	return xmp, ok
}

func (rt *RoundTrip) encode(md *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	if err := rt.enc.Encode(&buf, img, md, core.FmtTIFF); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
