package core

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extMap maps lowercase extensions to formats.
var extMap = map[string]Format{
	".jpg":  FmtJPEG,
	".jpeg": FmtJPEG,
	".jpe":  FmtJPEG,
	".png":  FmtPNG,
	".gif":  FmtGIF,
	".tiff": FmtTIFF,
	".tif":  FmtTIFF,
	".jxr":  FmtWMPhoto,
	".wdp":  FmtWMPhoto,
	".hdp":  FmtWMPhoto,
}

// DetectFormat returns the Format for the given file, first by reading
// magic bytes and falling back to extension.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FmtUnknown, err
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, err := io.ReadFull(f, buf)
	if err != nil && n == 0 {
		return FmtUnknown, err
	}

	if id := DetectBytes(buf[:n]); id != FmtUnknown {
		return id, nil
	}
	if id, ok := extMap[strings.ToLower(filepath.Ext(path))]; ok {
		return id, nil
	}
	return FmtUnknown, nil
}

// DetectBytes identifies a container from its leading bytes.
func DetectBytes(b []byte) Format {
	if len(b) < 4 {
		return FmtUnknown
	}
	switch {
	// JPEG: FF D8 FF
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return FmtJPEG
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return FmtPNG
	// GIF: GIF87a or GIF89a
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return FmtGIF
	// JPEG XR: 49 49 BC
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0xBC}):
		return FmtWMPhoto
	// TIFF: 49 49 2A 00 (little-endian) or 4D 4D 00 2A (big-endian)
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return FmtTIFF
	}
	return FmtUnknown
}
