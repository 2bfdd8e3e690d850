// Package locate finds the EXIF, XMP and IPTC subtrees of a decoded image
// at the conventional paths of its container format.
package locate

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
	"github.com/ankit-chaubey/media-metadata-convert/core/xmppacket"
)

// XMPKeyword marks the PNG text chunk that carries an XMP packet.
const XMPKeyword = "XML:com.adobe.xmp"

const maxTextChunks = 64

// subtree returns the node at path. Missing paths, malformed or
// unsupported queries and scalar values all count as absent.
func subtree(md *tree.Node, path string) (*tree.Node, bool) {
	if md == nil {
		return nil, false
	}
	v, err := md.GetQuery(path)
	if err != nil {
		return nil, false
	}
	n, ok := v.(*tree.Node)
	return n, ok
}

func firstOf(md *tree.Node, paths ...string) (*tree.Node, bool) {
	for _, p := range paths {
		if n, ok := subtree(md, p); ok {
			return n, true
		}
	}
	return nil, false
}

// Exif returns the EXIF directory of md.
func Exif(md *tree.Node, f core.Format) (*tree.Node, bool) {
	switch f {
	case core.FmtGIF, core.FmtPNG:
		return nil, false
	case core.FmtJPEG:
		return subtree(md, "/app1/ifd/exif")
	}
	return subtree(md, "/ifd/exif")
}

// Iptc returns the IPTC record of md.
func Iptc(md *tree.Node, f core.Format) (*tree.Node, bool) {
	switch f {
	case core.FmtGIF, core.FmtPNG:
		return nil, false
	case core.FmtJPEG:
		return subtree(md, "/app13/irb/8bimiptc/iptc")
	}
	return firstOf(md, "/ifd/iptc", "/ifd/irb/8bimiptc/iptc")
}

// Xmp returns the XMP subtree of md. PNG keeps XMP as text in an iTXt
// chunk; tc turns that packet back into a subtree and may be nil for
// callers that never look at PNG trees.
func Xmp(md *tree.Node, f core.Format, tc xmppacket.Transcoder) (*tree.Node, bool) {
	switch f {
	case core.FmtGIF:
		return nil, false
	case core.FmtJPEG:
		return subtree(md, "/xmp")
	case core.FmtPNG:
		packet, ok := PNGPacket(md)
		if !ok || tc == nil {
			return nil, false
		}
		return tc.Subtree(packet)
	}
	return firstOf(md, xmppacket.XMPPath, "/xmp")
}

// Find dispatches to the locator for kind.
func Find(md *tree.Node, f core.Format, kind core.Kind, tc xmppacket.Transcoder) (*tree.Node, bool) {
	switch kind {
	case core.KindEXIF:
		return Exif(md, f)
	case core.KindXMP:
		return Xmp(md, f, tc)
	case core.KindIPTC:
		return Iptc(md, f)
	}
	return nil, false
}

// PNGPacket returns the UTF-8 bytes of the first iTXt chunk keyed
// XMPKeyword. Chunks are visited in the order /iTXt, /[1]iTXt, ...
func PNGPacket(md *tree.Node) ([]byte, bool) {
	for i := 0; i < maxTextChunks; i++ {
		seg := tree.Indexed("/iTXt", i)
		chunk, ok := subtree(md, seg)
		if !ok {
			break
		}
		if kw, err := chunk.GetQuery("/Keyword"); err != nil || kw != XMPKeyword {
			continue
		}
		v, err := chunk.GetQuery("/TextEntry")
		if err != nil {
			return nil, false
		}
		text, ok := v.(string)
		if !ok || text == "" {
			return nil, false
		}
		packet, err := unicode.UTF8.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, false
		}
		return packet, true
	}
	return nil, false
}
