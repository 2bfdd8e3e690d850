package main

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/codec"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

const cliPacket = `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:format>image/tiff</dc:format></rdf:Description></rdf:RDF></x:xmpmeta>`

func writeTIFF(t *testing.T) string {
	t.Helper()
	exif := tree.New("exif")
	require.NoError(t, exif.SetQuery("/{ushort=37510}", "hello"))
	md := tree.New(string(core.FmtTIFF))
	require.NoError(t, md.SetQuery("/ifd/exif", exif))
	require.NoError(t, md.SetQuery("/ifd/xmp", []byte(cliPacket)))

	var buf bytes.Buffer
	require.NoError(t, codec.New().Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1)), md, core.FmtTIFF))
	path := filepath.Join(t.TempDir(), "in.tif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestView(t *testing.T) {
	out := run(t, "view", "--json=false", writeTIFF(t))
	assert.Contains(t, out, "Format: tiff")
	assert.Contains(t, out, "/ifd/exif/{ushort=37510}")
	assert.Contains(t, out, `"hello"`)
}

func TestConvertToJPEG(t *testing.T) {
	out := run(t, "convert", "--json", "--to", "jpg", writeTIFF(t))

	var got struct {
		Format  string `json:"format"`
		Found   bool   `json:"found"`
		Entries []struct {
			Path  string `json:"path"`
			Value string `json:"value"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Found)
	assert.Equal(t, "jpg", got.Format)

	values := map[string]string{}
	for _, e := range got.Entries {
		values[e.Path] = e.Value
	}
	assert.Equal(t, `"hello"`, values["/app1/ifd/exif/{ushort=37510}"])
	assert.Equal(t, `"image/tiff"`, values["/xmp/dc:format"])
}

func TestConvertToPNG(t *testing.T) {
	out := run(t, "convert", "--json=false", "--to", "png", writeTIFF(t))
	assert.Contains(t, out, "/iTXt/Keyword")
	assert.Contains(t, out, "XML:com.adobe.xmp")
}

func TestXMPNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0o644))

	assert.Contains(t, run(t, "xmp", "--json=false", path), "not found")
	assert.Contains(t, run(t, "locate", "--json=false", "--kind", "exif", path), "not found")
}

func TestXMPPacket(t *testing.T) {
	out := run(t, "xmp", "--json=false", writeTIFF(t))
	assert.Contains(t, out, "<dc:format>image/tiff</dc:format>")
}

func TestLocateBadKind(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"locate", "--kind", "maker", writeTIFF(t)})
	assert.Error(t, rootCmd.Execute())
}
