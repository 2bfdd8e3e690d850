package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/charmap"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type pngChunk struct {
	typ  string
	data []byte
}

func readPNGChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG")
	}
	var chunks []pngChunk
	i := len(pngSignature)
	for i+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[i : i+4]))
		typ := string(data[i+4 : i+8])
		i += 8
		// data plus trailing CRC
		if length < 0 || i+length+4 > len(data) {
			return chunks, errors.Errorf("chunk %q overruns input", typ)
		}
		chunks = append(chunks, pngChunk{typ: typ, data: data[i : i+length]})
		i += length + 4
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// decodePNG builds the png tree. Each textual chunk becomes a node named
// after the chunk type; the n-th repeat is "/[n]iTXt".
func decodePNG(data []byte) (*tree.Node, error) {
	md := tree.New(string(core.FmtPNG))
	chunks, errs := readPNGChunks(data)

	seen := map[string]int{}
	for _, c := range chunks {
		var (
			n   *tree.Node
			err error
		)
		switch c.typ {
		case "iTXt":
			n, err = decodeITXt(c.data)
		case "tEXt":
			n, err = decodeTEXt(c.data)
		default:
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, c.typ))
			continue
		}
		seg := tree.Indexed("/"+c.typ, seen[c.typ])
		seen[c.typ]++
		errs = multierr.Append(errs, md.SetQuery(seg, n))
	}
	return md, errs
}

// iTXt: keyword\0 flag method lang\0 translated\0 text
func decodeITXt(data []byte) (*tree.Node, error) {
	keyword, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(rest) < 2 {
		return nil, errors.New("truncated header")
	}
	compressed, method := rest[0], rest[1]
	rest = rest[2:]
	lang, rest, ok := bytes.Cut(rest, []byte{0})
	if !ok {
		return nil, errors.New("missing language tag")
	}
	translated, text, ok := bytes.Cut(rest, []byte{0})
	if !ok {
		return nil, errors.New("missing translated keyword")
	}
	if compressed != 0 {
		if method != 0 {
			return nil, errors.Errorf("unknown compression method %d", method)
		}
		zr, err := zlib.NewReader(bytes.NewReader(text))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if text, err = io.ReadAll(zr); err != nil {
			return nil, err
		}
	}

	n := tree.New("iTXt")
	for _, e := range []tree.Entry{
		{Segment: "/Keyword", Value: string(keyword)},
		{Segment: "/CompressionFlag", Value: compressed != 0},
		{Segment: "/LanguageTag", Value: string(lang)},
		{Segment: "/TranslatedKeyword", Value: string(translated)},
		{Segment: "/TextEntry", Value: string(text)},
	} {
		if err := n.SetQuery(e.Segment, e.Value); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// tEXt: keyword\0 latin-1 text
func decodeTEXt(data []byte) (*tree.Node, error) {
	keyword, text, ok := bytes.Cut(data, []byte{0})
	if !ok {
		return nil, errors.New("missing keyword separator")
	}
	n := tree.New("tEXt")
	if err := n.SetQuery("/Keyword", string(keyword)); err != nil {
		return nil, err
	}
	utf8, err := charmap.ISO8859_1.NewDecoder().Bytes(text)
	if err != nil {
		return nil, err
	}
	if err := n.SetQuery("/TextEntry", string(utf8)); err != nil {
		return nil, err
	}
	return n, nil
}
