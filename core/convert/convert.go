// Package convert relocates the EXIF, XMP and IPTC subtrees of one
// container's metadata tree into a fresh tree laid out for another
// container.
package convert

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/codec"
	"github.com/ankit-chaubey/media-metadata-convert/core/locate"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
	"github.com/ankit-chaubey/media-metadata-convert/core/xmppacket"
)

// ErrNilSource is returned when Convert is called without a source tree.
var ErrNilSource = errors.New("convert: nil source tree")

// prefixes are the paths a destination keeps each dialect under.
type prefixes map[core.Kind]string

var destinations = map[core.Format]prefixes{
	core.FmtTIFF: {
		core.KindEXIF: "/ifd/exif",
		core.KindXMP:  "/ifd/xmp",
		core.KindIPTC: "/ifd/iptc",
	},
	core.FmtJPEG: {
		core.KindEXIF: "/app1/ifd/exif",
		core.KindXMP:  "/xmp",
		core.KindIPTC: "/app13/irb/8bimiptc/iptc",
	},
	core.FmtWMPhoto: {
		core.KindEXIF: "/ifd/exif",
		core.KindXMP:  "/ifd/xmp",
		core.KindIPTC: "/ifd/iptc",
	},
}

// Converter moves metadata between container layouts. It holds no
// per-conversion state and is safe for concurrent use when its
// transcoder is.
type Converter struct {
	tc  xmppacket.Transcoder
	log *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		c.log = l
	}
}

// WithTranscoder replaces the XMP subtree/packet transcoder.
func WithTranscoder(tc xmppacket.Transcoder) Option {
	return func(c *Converter) {
		c.tc = tc
	}
}

// New returns a Converter. Without WithTranscoder, XMP packets go through
// a synthetic TIFF built by the image codec.
func New(opts ...Option) *Converter {
	c := &Converter{log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	if c.tc == nil {
		img := codec.New(codec.WithLogger(c.log))
		c.tc = xmppacket.NewRoundTrip(img, img, xmppacket.WithLogger(c.log))
	}
	return c
}

// Convert rebuilds the metadata of src, read as a from tree, for the to
// container. The same format on both sides returns src itself. A nil
// result with a nil error means there is no metadata to carry over.
func (c *Converter) Convert(src *tree.Node, from, to core.Format) (*tree.Node, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if from == to {
		return src, nil
	}

	found := make(map[core.Kind]*tree.Node, len(core.Kinds))
	for _, k := range core.Kinds {
		if n, ok := locate.Find(src, from, k, c.tc); ok {
			found[k] = n
		}
	}
	log := c.log.With(zap.String("from", string(from)), zap.String("to", string(to)))
	if len(found) == 0 {
		log.Debug("no metadata in source")
		return nil, nil
	}
	log.Debug("located metadata", zap.Strings("kinds", kindNames(found)))

	if to == core.FmtPNG {
		return c.toPNG(found, log)
	}

	dst, ok := destinations[to]
	if !ok {
		log.Debug("destination cannot carry metadata")
		return nil, nil
	}
	out := tree.New(string(to))
	for _, k := range core.Kinds {
		n, ok := found[k]
		if !ok {
			continue
		}
		if err := copySubIFD(out, dst[k], n); err != nil {
			return nil, errors.Wrapf(err, "copy %s", k)
		}
	}
	return out, nil
}

// toPNG flattens the XMP subtree into a single iTXt text chunk. EXIF and
// IPTC have no PNG representation.
func (c *Converter) toPNG(found map[core.Kind]*tree.Node, log *zap.Logger) (*tree.Node, error) {
	for _, k := range []core.Kind{core.KindEXIF, core.KindIPTC} {
		if _, ok := found[k]; ok {
			log.Debug("dropped for png", zap.String("kind", string(k)))
		}
	}
	xmp, ok := found[core.KindXMP]
	if !ok {
		return nil, nil
	}
	packet, ok := c.tc.Packet(xmp)
	if !ok {
		log.Debug("xmp packet extraction failed")
		return nil, nil
	}
	text, err := unicode.UTF8BOM.NewDecoder().Bytes(packet)
	if err != nil {
		log.Debug("xmp packet is not utf-8", zap.Error(err))
		return nil, nil
	}

	chunk := tree.New("iTXt")
	if err := chunk.SetQuery("/Keyword", locate.XMPKeyword); err != nil {
		return nil, err
	}
	if err := chunk.SetQuery("/TextEntry", string(text)); err != nil {
		return nil, err
	}
	out := tree.New(string(core.FmtPNG))
	if err := out.SetQuery("/iTXt", chunk); err != nil {
		return nil, err
	}
	return out, nil
}

// copySubIFD deep-copies src under prefix in dst. Nested nodes get an
// empty placeholder of the same format first and are then filled in
// order.
func copySubIFD(dst *tree.Node, prefix string, src *tree.Node) error {
	if err := ensure(dst, prefix, src.Format()); err != nil {
		return err
	}
	for _, e := range src.Entries() {
		path := prefix + e.Segment
		sub, ok := e.Value.(*tree.Node)
		if !ok {
			if err := dst.SetQuery(path, tree.CloneValue(e.Value)); err != nil {
				return err
			}
			continue
		}
		if err := copySubIFD(dst, path, sub); err != nil {
			return err
		}
	}
	return nil
}

// ensure creates the nodes along path that do not exist yet. Intermediate
// nodes are named after their segment; the last one gets format.
func ensure(dst *tree.Node, path, format string) error {
	segs, err := tree.SplitPath(path)
	if err != nil {
		return err
	}
	p := ""
	for i, seg := range segs {
		p += seg
		if dst.ContainsQuery(p) {
			continue
		}
		f := seg[1:]
		if i == len(segs)-1 {
			f = format
		}
		if err := dst.SetQuery(p, tree.New(f)); err != nil {
			return err
		}
	}
	return nil
}

func kindNames(found map[core.Kind]*tree.Node) []string {
	var names []string
	for _, k := range core.Kinds {
		if _, ok := found[k]; ok {
			names = append(names, string(k))
		}
	}
	return names
}
