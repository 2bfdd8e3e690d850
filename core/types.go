// Package core defines the container format identifiers, format detection
// and console output shared by the metadata conversion packages.
package core

import "strings"

// Format identifies an image container by its lowercase short code.
type Format string

const (
	FmtTIFF    Format = "tiff"
	FmtJPEG    Format = "jpg"
	FmtPNG     Format = "png"
	FmtWMPhoto Format = "wmphoto"
	FmtGIF     Format = "gif"

	// FmtUnknown is used when a codec cannot or will not report a format.
	FmtUnknown Format = ""
)

// Kind is one of the embedded metadata dialects the converter relocates.
type Kind string

const (
	KindEXIF Kind = "exif"
	KindXMP  Kind = "xmp"
	KindIPTC Kind = "iptc"
)

// Kinds lists the dialects in the order they are located and copied.
var Kinds = []Kind{KindEXIF, KindXMP, KindIPTC}

// ParseFormat maps a user supplied name or file extension to a Format.
// Unrecognised names map to FmtUnknown.
func ParseFormat(s string) Format {
	if id, ok := extMap["."+strings.ToLower(s)]; ok {
		return id
	}
	switch f := Format(strings.ToLower(s)); f {
	case FmtTIFF, FmtJPEG, FmtPNG, FmtWMPhoto, FmtGIF:
		return f
	}
	return FmtUnknown
}
