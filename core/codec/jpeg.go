package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/multierr"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/rdf"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

var (
	exifIntro = []byte("Exif\x00\x00")
	xmpIntro  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	psIntro   = []byte("Photoshop 3.0\x00")
)

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP1  = 0xE1
	markerAPP13 = 0xED
)

type jpegSegment struct {
	marker byte
	data   []byte
}

// jpegSegments returns the marker segments preceding the scan data.
func jpegSegments(data []byte) ([]jpegSegment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errors.New("not a JPEG")
	}

	var segs []jpegSegment
	i := 2
	for i+1 < len(data) {
		if data[i] != 0xFF {
			return segs, errors.Errorf("expected marker at offset %d", i)
		}
		marker := data[i+1]
		i += 2
		switch {
		case marker == 0xFF:
			// fill byte
			i--
			continue
		case marker == markerEOI, marker == markerSOS:
			return segs, nil
		case marker == 0x01, marker >= 0xD0 && marker <= 0xD7:
			continue
		}

		if i+2 > len(data) {
			return segs, errors.New("truncated segment length")
		}
		segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			return segs, errors.Errorf("segment 0x%02X overruns input", marker)
		}
		segs = append(segs, jpegSegment{marker: marker, data: data[i : i+segLen]})
		i += segLen
	}
	return segs, nil
}

// decodeJPEG builds the jpg tree: /app1/ifd for EXIF, /xmp for the XMP
// packet and /app13/irb/8bimiptc/iptc for IPTC.
func decodeJPEG(data []byte) (*tree.Node, error) {
	md := tree.New(string(core.FmtJPEG))
	segs, errs := jpegSegments(data)

	for _, seg := range segs {
		var err error
		switch {
		case seg.marker == markerAPP1 && bytes.HasPrefix(seg.data, exifIntro):
			err = decodeJPEGExif(md, seg.data[len(exifIntro):])
		case seg.marker == markerAPP1 && bytes.HasPrefix(seg.data, xmpIntro):
			err = decodeJPEGXMP(md, seg.data[len(xmpIntro):])
		case seg.marker == markerAPP13 && bytes.HasPrefix(seg.data, psIntro):
			err = decodeJPEGIRB(md, seg.data[len(psIntro):])
		}
		errs = multierr.Append(errs, err)
	}
	return md, errs
}

func decodeJPEGExif(md *tree.Node, raw []byte) error {
	if md.ContainsQuery("/app1") {
		return nil
	}
	x, err := exif.Decode(bytes.NewReader(raw))
	if x == nil {
		return errors.Wrap(err, "exif")
	}
	if x.Tiff == nil || len(x.Tiff.Dirs) == 0 {
		return errors.New("exif: no IFD0")
	}
	ifd, err := ifdTree(x.Raw, x.Tiff.Order, x.Tiff.Dirs[0])
	if err != nil {
		return errors.Wrap(err, "exif")
	}
	app1 := tree.New("app1")
	if err := app1.SetQuery("/ifd", ifd); err != nil {
		return err
	}
	return md.SetQuery("/app1", app1)
}

func decodeJPEGXMP(md *tree.Node, packet []byte) error {
	if md.ContainsQuery("/xmp") {
		return nil
	}
	x, err := rdf.Parse(packet)
	if err != nil {
		return errors.Wrap(err, "xmp")
	}
	return md.SetQuery("/xmp", x)
}

func decodeJPEGIRB(md *tree.Node, data []byte) error {
	if md.ContainsQuery("/app13") {
		return nil
	}
	irb, err := irbTree(data)
	if err != nil {
		return errors.Wrap(err, "photoshop irb")
	}
	app13 := tree.New("app13")
	if err := app13.SetQuery("/irb", irb); err != nil {
		return err
	}
	return md.SetQuery("/app13", app13)
}
