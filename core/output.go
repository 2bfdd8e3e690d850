package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// maxBytesShown caps how much of a binary value is printed.
const maxBytesShown = 48

// Printer handles all display output for the CLI.
type Printer struct {
	JSON   bool
	Writer io.Writer
}

// NewPrinter creates a default Printer writing to stdout.
func NewPrinter(jsonMode bool) *Printer {
	return &Printer{JSON: jsonMode, Writer: os.Stdout}
}

// PrintTree renders a metadata tree. A nil tree prints as "not found".
func (p *Printer) PrintTree(label string, format Format, md *tree.Node) {
	if p.JSON {
		p.printJSON(label, format, md)
		return
	}
	p.printText(label, format, md)
}

func (p *Printer) printText(label string, format Format, md *tree.Node) {
	fmt.Fprintf(p.Writer, "Source: %s\n", label)
	fmt.Fprintf(p.Writer, "Format: %s\n", formatName(format))
	if md == nil {
		fmt.Fprintln(p.Writer, "not found")
		return
	}
	if md.Len() == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	_ = md.Walk(func(path string, v any) error {
		if n, ok := v.(*tree.Node); ok {
			fmt.Fprintf(p.Writer, "── %s [%s] ──\n", path, n.Format())
			return nil
		}
		fmt.Fprintf(p.Writer, "  %-40s %s\n", path, FormatValue(v))
		return nil
	})
}

func (p *Printer) printJSON(label string, format Format, md *tree.Node) {
	type jsonEntry struct {
		Path   string `json:"path"`
		Node   string `json:"node,omitempty"`
		Value  string `json:"value,omitempty"`
		GoType string `json:"type,omitempty"`
	}
	type jsonOutput struct {
		Source  string      `json:"source"`
		Format  string      `json:"format"`
		Found   bool        `json:"found"`
		Entries []jsonEntry `json:"entries"`
	}

	out := jsonOutput{
		Source:  label,
		Format:  string(format),
		Found:   md != nil,
		Entries: []jsonEntry{},
	}
	if md != nil {
		_ = md.Walk(func(path string, v any) error {
			if n, ok := v.(*tree.Node); ok {
				out.Entries = append(out.Entries, jsonEntry{Path: path, Node: n.Format()})
				return nil
			}
			out.Entries = append(out.Entries, jsonEntry{
				Path:   path,
				Value:  FormatValue(v),
				GoType: fmt.Sprintf("%T", v),
			})
			return nil
		})
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(p.Writer, string(b))
}

// PrintPacket writes a raw XMP packet, or "not found" when there is none.
func (p *Printer) PrintPacket(packet []byte, ok bool) {
	if !ok {
		p.PrintNotFound()
		return
	}
	if p.JSON {
		b, _ := json.Marshal(map[string]string{"packet": string(packet)})
		fmt.Fprintln(p.Writer, string(b))
		return
	}
	fmt.Fprintln(p.Writer, string(packet))
}

// PrintNotFound reports absent metadata.
func (p *Printer) PrintNotFound() {
	if p.JSON {
		fmt.Fprintln(p.Writer, `{"found": false}`)
		return
	}
	fmt.Fprintln(p.Writer, "not found")
}

// PrintInfo prints an info line (suppressed in JSON mode).
func (p *Printer) PrintInfo(msg string) {
	if !p.JSON {
		fmt.Fprintln(p.Writer, msg)
	}
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ Error: "+msg)
}

// FormatValue renders a scalar for display. Byte slices print as text
// when they are valid UTF-8, otherwise as truncated hex.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		if utf8.Valid(v) && len(v) <= 4*maxBytesShown {
			return fmt.Sprintf("%q", v)
		}
		if len(v) > maxBytesShown {
			return fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(v[:maxBytesShown]), len(v))
		}
		return hex.EncodeToString(v)
	}
	return fmt.Sprint(v)
}

func formatName(f Format) string {
	if f == FmtUnknown {
		return "(unknown)"
	}
	return string(f)
}
