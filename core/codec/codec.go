// Package codec is the image codec the converter talks to: it decodes the
// embedded metadata of JPEG, PNG, TIFF and GIF files into metadata trees and
// encodes small uncompressed grayscale TIFFs carrying a tree.
package codec

import (
	"bytes"
	"image"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ankit-chaubey/media-metadata-convert/core"
	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// ErrUnsupportedFormat is returned for containers the codec cannot handle.
var ErrUnsupportedFormat = errors.New("codec: unsupported format")

// Codec decodes and encodes image metadata.
type Codec struct {
	log *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for non-fatal decode problems.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		c.log = l
	}
}

// New returns a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DecodeFile decodes the metadata of the image at path.
func (c *Codec) DecodeFile(path string) (*tree.Node, core.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.FmtUnknown, err
	}
	defer f.Close()
	return c.DecodeMetadata(f)
}

// DecodeMetadata reads an image and returns its metadata tree along with
// the detected container format. Damaged metadata blocks are skipped and
// logged; only unreadable input or an unsupported container is an error.
func (c *Codec) DecodeMetadata(r io.Reader) (*tree.Node, core.Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.FmtUnknown, errors.Wrap(err, "read image")
	}

	format := core.DetectBytes(data)
	var (
		md   *tree.Node
		errs error
	)
	switch format {
	case core.FmtJPEG:
		md, errs = decodeJPEG(data)
	case core.FmtPNG:
		md, errs = decodePNG(data)
	case core.FmtTIFF:
		md, errs = decodeTIFF(data)
		if md == nil {
			return nil, format, errors.Wrap(errs, "decode tiff")
		}
	case core.FmtGIF:
		md = tree.New(string(core.FmtGIF))
	default:
		return nil, format, errors.Wrapf(ErrUnsupportedFormat, "decode %q", format)
	}

	for _, e := range multierr.Errors(errs) {
		c.log.Warn("skipped damaged metadata block", zap.String("format", string(format)), zap.Error(e))
	}
	return md, format, nil
}

// Encode writes img in the given container format with md as its metadata.
// Only TIFF is supported; the pixels are stored as 8-bit gray.
func (c *Codec) Encode(w io.Writer, img image.Image, md *tree.Node, format core.Format) error {
	if format != core.FmtTIFF {
		return errors.Wrapf(ErrUnsupportedFormat, "encode %q", format)
	}
	var buf bytes.Buffer
	if err := encodeTIFF(&buf, img, md, c.log); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "write tiff")
}
