package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// fakeTranscoder returns a fixed subtree and records the packet it saw.
type fakeTranscoder struct {
	subtree *tree.Node
	got     []byte
}

func (f *fakeTranscoder) Packet(*tree.Node) ([]byte, bool) { return nil, false }

func (f *fakeTranscoder) Subtree(packet []byte) (*tree.Node, bool) {
	f.got = packet
	return f.subtree, f.subtree != nil
}

func build(t *testing.T, format string, kv ...any) *tree.Node {
	t.Helper()
	n := tree.New(format)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, n.SetQuery(kv[i].(string), kv[i+1]))
	}
	return n
}

func TestExif(t *testing.T) {
	exif := build(t, "exif", "/{ushort=37510}", "hello")

	tests := []struct {
		name   string
		md     *tree.Node
		format core.Format
		found  bool
	}{
		{"jpg", build(t, "jpg", "/app1/ifd/exif", exif), core.FmtJPEG, true},
		{"jpg wrong path", build(t, "jpg", "/ifd/exif", exif), core.FmtJPEG, false},
		{"tiff", build(t, "tiff", "/ifd/exif", exif), core.FmtTIFF, true},
		{"wmphoto", build(t, "wmphoto", "/ifd/exif", exif), core.FmtWMPhoto, true},
		{"unknown uses ifd", build(t, "", "/ifd/exif", exif), core.FmtUnknown, true},
		{"png never", build(t, "png", "/ifd/exif", exif), core.FmtPNG, false},
		{"gif never", build(t, "gif", "/ifd/exif", exif), core.FmtGIF, false},
		{"scalar is absent", build(t, "tiff", "/ifd/exif", "oops"), core.FmtTIFF, false},
		{"through scalar", build(t, "tiff", "/ifd", "flat"), core.FmtTIFF, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Exif(tc.md, tc.format)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.True(t, exif.Equal(got))
			}
		})
	}
}

func TestExifNilTree(t *testing.T) {
	_, ok := Exif(nil, core.FmtTIFF)
	assert.False(t, ok)
}

func TestIptcFallback(t *testing.T) {
	iptc := build(t, "iptc", "/{str=City}", "Kiel")

	got, ok := Iptc(build(t, "tiff", "/ifd/irb/8bimiptc/iptc", iptc), core.FmtTIFF)
	require.True(t, ok)
	assert.True(t, iptc.Equal(got))

	other := build(t, "iptc", "/{str=City}", "Bonn")
	got, ok = Iptc(build(t, "tiff", "/ifd/iptc", other, "/ifd/irb/8bimiptc/iptc", iptc), core.FmtTIFF)
	require.True(t, ok)
	assert.True(t, other.Equal(got))

	_, ok = Iptc(build(t, "jpg", "/app13/irb/8bimiptc/iptc", iptc), core.FmtPNG)
	assert.False(t, ok)

	got, ok = Iptc(build(t, "jpg", "/app13/irb/8bimiptc/iptc", iptc), core.FmtJPEG)
	require.True(t, ok)
	assert.True(t, iptc.Equal(got))
}

func TestXmpFallback(t *testing.T) {
	xmp := build(t, "xmp", "/dc:format", "image/tiff")

	got, ok := Xmp(build(t, "tiff", "/xmp", xmp), core.FmtTIFF, nil)
	require.True(t, ok)
	assert.True(t, xmp.Equal(got))

	// /ifd is a scalar, so /ifd/xmp is an unsupported query
	got, ok = Xmp(build(t, "tiff", "/ifd", uint16(1), "/xmp", xmp), core.FmtTIFF, nil)
	require.True(t, ok)
	assert.True(t, xmp.Equal(got))

	got, ok = Xmp(build(t, "tiff", "/ifd/xmp", xmp), core.FmtWMPhoto, nil)
	require.True(t, ok)
	assert.True(t, xmp.Equal(got))

	_, ok = Xmp(build(t, "gif", "/xmp", xmp), core.FmtGIF, nil)
	assert.False(t, ok)
}

func TestXmpPNG(t *testing.T) {
	xmp := build(t, "xmp", "/dc:format", "image/png")
	fake := &fakeTranscoder{subtree: xmp}

	md := build(t, "png",
		"/iTXt/Keyword", "Comment",
		"/iTXt/TextEntry", "not xmp",
		"/[1]iTXt/Keyword", XMPKeyword,
		"/[1]iTXt/TextEntry", "<x:xmpmeta/>",
	)
	got, ok := Xmp(md, core.FmtPNG, fake)
	require.True(t, ok)
	assert.True(t, xmp.Equal(got))
	assert.Equal(t, []byte("<x:xmpmeta/>"), fake.got)

	_, ok = Xmp(md, core.FmtPNG, nil)
	assert.False(t, ok)
}

func TestPNGPacket(t *testing.T) {
	_, ok := PNGPacket(build(t, "png", "/iTXt/Keyword", "Comment", "/iTXt/TextEntry", "x"))
	assert.False(t, ok)

	_, ok = PNGPacket(build(t, "png", "/iTXt/Keyword", XMPKeyword))
	assert.False(t, ok)

	_, ok = PNGPacket(build(t, "png", "/iTXt/Keyword", XMPKeyword, "/iTXt/TextEntry", []byte("raw")))
	assert.False(t, ok)

	packet, ok := PNGPacket(build(t, "png", "/iTXt/Keyword", XMPKeyword, "/iTXt/TextEntry", "bad \xff byte"))
	require.True(t, ok)
	assert.Equal(t, "bad � byte", string(packet))
}

func TestFind(t *testing.T) {
	iptc := build(t, "iptc", "/{str=City}", "Kiel")
	md := build(t, "jpg", "/app13/irb/8bimiptc/iptc", iptc)

	_, ok := Find(md, core.FmtJPEG, core.KindIPTC, nil)
	assert.True(t, ok)
	_, ok = Find(md, core.FmtJPEG, core.KindEXIF, nil)
	assert.False(t, ok)
	_, ok = Find(md, core.FmtJPEG, core.Kind("maker"), nil)
	assert.False(t, ok)
}
