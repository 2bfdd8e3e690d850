package xmppacket_test

import (
	"bytes"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/codec"
	"github.com/ankit-chaubey/media-metadata-convert/core/rdf"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
	"github.com/ankit-chaubey/media-metadata-convert/core/xmppacket"
)

func newRoundTrip() *xmppacket.RoundTrip {
	c := codec.New()
	return xmppacket.NewRoundTrip(c, c)
}

func TestExtractReproducesBytes(t *testing.T) {
	big := bytes.Repeat([]byte("<rdf:li>x</rdf:li>"), 4096)
	rt := newRoundTrip()
	for name, in := range map[string][]byte{
		"one byte":   {0x42},
		"four bytes": []byte("abcd"),
		"five bytes": []byte("abcde"),
		"odd length": []byte("<x:xmpmeta/>\n"),
		"binary":     {0x00, 0xFF, 0x1C, 0x02, 0x00, 0x49, 0x49},
		"large":      big,
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := rt.Extract(xmppacket.SyntheticTree(in))
			require.True(t, ok)
			assert.Equal(t, in, got)
		})
	}
}

func TestPacketSubtreeRoundTrip(t *testing.T) {
	x := tree.New(rdf.FormatXMP)
	require.NoError(t, x.SetQuery("/dc:format", "image/png"))
	subject := tree.New(rdf.FormatBag)
	require.NoError(t, subject.SetQuery(rdf.ItemSegment(0), "boats"))
	require.NoError(t, x.SetQuery("/dc:subject", subject))

	rt := newRoundTrip()
	packet, ok := rt.Packet(x)
	require.True(t, ok)
	assert.Contains(t, string(packet), "<dc:format>image/png</dc:format>")

	back, ok := rt.Subtree(packet)
	require.True(t, ok)
	if diff := cmp.Diff(x, back); diff != "" {
		t.Errorf("subtree changed (-want +got):\n%s", diff)
	}
}

func TestAbsence(t *testing.T) {
	rt := newRoundTrip()

	_, ok := rt.Packet(nil)
	assert.False(t, ok)

	_, ok = rt.Subtree(nil)
	assert.False(t, ok)

	// not RDF, so the decoder keeps raw bytes instead of a subtree
	_, ok = rt.Subtree([]byte("<unterminated"))
	assert.False(t, ok)

	_, ok = rt.Extract(tree.New(string(core.FmtTIFF)))
	assert.False(t, ok)
}

type failingEncoder struct{}

func (failingEncoder) Encode(io.Writer, image.Image, *tree.Node, core.Format) error {
	return errors.New("disk full")
}

func TestEncoderFailureIsAbsence(t *testing.T) {
	rt := xmppacket.NewRoundTrip(failingEncoder{}, codec.New())
	_, ok := rt.Extract(xmppacket.SyntheticTree([]byte("abc")))
	assert.False(t, ok)
	_, ok = rt.Subtree([]byte("abc"))
	assert.False(t, ok)
}

func TestSyntheticTreeCopies(t *testing.T) {
	x := tree.New(rdf.FormatXMP)
	require.NoError(t, x.SetQuery("/dc:format", "a"))
	md := xmppacket.SyntheticTree(x)
	require.NoError(t, x.SetQuery("/dc:format", "b"))

	v, err := md.GetQuery("/ifd/xmp/dc:format")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, string(core.FmtTIFF), md.Format())

	raw := []byte("pkt")
	md = xmppacket.SyntheticTree(raw)
	raw[0] = 'x'
	v, err = md.GetQuery(xmppacket.XMPPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("pkt"), v)
}
