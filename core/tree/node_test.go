package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetQuery(t *testing.T) {
	root := New("jpg")
	require.NoError(t, root.SetQuery("/app1/ifd/exif/{ushort=37510}", "hello"))

	v, err := root.GetQuery("/app1/ifd/exif/{ushort=37510}")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	sub, err := root.GetQuery("/app1/ifd")
	require.NoError(t, err)
	node, ok := sub.(*Node)
	require.True(t, ok)
	assert.Equal(t, "", node.Format())
	assert.Equal(t, []string{"/exif"}, node.Children())

	assert.True(t, root.ContainsQuery("/app1/ifd/exif"))
	assert.False(t, root.ContainsQuery("/app13"))
}

func TestGetQueryErrors(t *testing.T) {
	root := New("tiff")
	require.NoError(t, root.SetQuery("/ifd/{ushort=256}", uint16(1)))

	tests := []struct {
		path string
		want error
	}{
		{"/ifd/exif", ErrNotFound},
		{"/ifd/{ushort=256}/deeper", ErrQueryNotSupported},
		{"ifd", ErrQueryNotSupported},
		{"/ifd//exif", ErrQueryNotSupported},
		{"/ifd/{ushort=256", ErrQueryNotSupported},
		{"/ifd/}", ErrQueryNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := root.GetQuery(tt.path)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, root.ContainsQuery(tt.path))
		})
	}
}

func TestSetQueryErrors(t *testing.T) {
	root := New("tiff")
	require.NoError(t, root.SetQuery("/ifd", "scalar"))

	assert.ErrorIs(t, root.SetQuery("/ifd/exif", "x"), ErrQueryNotSupported)
	assert.ErrorIs(t, root.SetQuery("/", "x"), ErrQueryNotSupported)
	assert.ErrorIs(t, root.SetQuery("/other", struct{}{}), ErrUnsupportedValue)
	assert.ErrorIs(t, root.SetQuery("/other", (*Node)(nil)), ErrUnsupportedValue)
}

func TestInsertionOrderAndReplace(t *testing.T) {
	n := New("xmp")
	require.NoError(t, n.SetQuery("/c", "1"))
	require.NoError(t, n.SetQuery("/a", "2"))
	require.NoError(t, n.SetQuery("/b", "3"))
	require.NoError(t, n.SetQuery("/a", "replaced"))

	assert.Equal(t, []string{"/c", "/a", "/b"}, n.Children())
	v, err := n.GetQuery("/a")
	require.NoError(t, err)
	assert.Equal(t, "replaced", v)
	assert.Equal(t, 3, n.Len())
}

func TestBracesMayContainSlash(t *testing.T) {
	n := New("xmp")
	path := "/{wstr=http://purl.org/dc/elements/1.1/}:title"
	require.NoError(t, n.SetQuery(path, "t"))
	assert.Equal(t, []string{path}, n.Children())
	assert.True(t, n.ContainsQuery(path))
}

func TestCloneIsDeep(t *testing.T) {
	n := New("exif")
	raw := []byte{1, 2, 3}
	require.NoError(t, n.SetQuery("/{ushort=37500}", raw))
	require.NoError(t, n.SetQuery("/sub/x", []uint16{1, 2}))

	c := n.Clone()
	if diff := cmp.Diff(n, c); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	raw[0] = 9
	v, err := c.GetQuery("/{ushort=37500}")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, v)
	assert.False(t, n.Equal(c))
}

func TestEqual(t *testing.T) {
	a := New("xmp")
	b := New("xmp")
	require.NoError(t, a.SetQuery("/x", "1"))
	require.NoError(t, a.SetQuery("/y", "2"))
	require.NoError(t, b.SetQuery("/y", "2"))
	require.NoError(t, b.SetQuery("/x", "1"))

	assert.False(t, a.Equal(b), "order matters")
	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(New("tiff")))
	assert.True(t, (*Node)(nil).Equal(nil))
}

func TestWalk(t *testing.T) {
	n := New("tiff")
	require.NoError(t, n.SetQuery("/ifd/exif/{ushort=1}", "a"))
	require.NoError(t, n.SetQuery("/ifd/xmp", []byte("p")))

	var paths []string
	require.NoError(t, n.Walk(func(path string, _ any) error {
		paths = append(paths, path)
		return nil
	}))
	assert.Equal(t, []string{"/ifd", "/ifd/exif", "/ifd/exif/{ushort=1}", "/ifd/xmp"}, paths)
}

func TestSegmentHelpers(t *testing.T) {
	assert.Equal(t, "/{ushort=37510}", UShort(37510))
	assert.Equal(t, "/{str=Keywords}", Str("Keywords"))
	assert.Equal(t, "/iTXt", Indexed("/iTXt", 0))
	assert.Equal(t, "/[2]iTXt", Indexed("/iTXt", 2))

	id, ok := ParseUShort("/{ushort=700}")
	assert.True(t, ok)
	assert.Equal(t, uint16(700), id)
	_, ok = ParseUShort("/{ushort=70000}")
	assert.False(t, ok)
	_, ok = ParseUShort("/xmp")
	assert.False(t, ok)
}
