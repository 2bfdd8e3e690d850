package rdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// Encode renders an XMP subtree as a complete packet, including the
// xpacket wrapper.
func Encode(n *tree.Node) ([]byte, error) {
	e := &encoder{prefixes: make(map[string]string), used: make(map[string]string)}
	if err := e.collect(n); err != nil {
		return nil, err
	}

	e.enc = xml.NewEncoder(&e.buf)
	e.enc.Indent("", " ")
	e.token(xml.ProcInst{Target: "xpacket", Inst: []byte("begin=\"\uFEFF\" id=\"W5M0MpCehiHzreSzNTczkc9d\"")})
	e.token(xml.StartElement{
		Name: xml.Name{Local: "x:xmpmeta"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns:x"}, Value: metaNamespace}},
	})

	nss := make([]string, 0, len(e.prefixes))
	for ns := range e.prefixes {
		nss = append(nss, ns)
	}
	sort.Strings(nss)
	attrs := []xml.Attr{{Name: xml.Name{Local: "xmlns:rdf"}, Value: rdfNamespace}}
	for _, ns := range nss {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns:" + e.prefixes[ns]}, Value: ns})
	}
	e.token(xml.StartElement{Name: xml.Name{Local: "rdf:RDF"}, Attr: attrs})
	e.token(xml.StartElement{
		Name: xml.Name{Local: "rdf:Description"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "rdf:about"}, Value: ""}},
	})
	e.properties(n)
	e.token(xml.EndElement{Name: xml.Name{Local: "rdf:Description"}})
	e.token(xml.EndElement{Name: xml.Name{Local: "rdf:RDF"}})
	e.token(xml.EndElement{Name: xml.Name{Local: "x:xmpmeta"}})
	e.token(xml.CharData("\n"))
	e.token(xml.ProcInst{Target: "xpacket", Inst: []byte(`end="w"`)})
	if e.err == nil {
		e.err = e.enc.Flush()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf      bytes.Buffer
	enc      *xml.Encoder
	prefixes map[string]string // namespace -> prefix
	used     map[string]string // prefix -> namespace
	err      error
}

// collect registers the namespace of every property below n.
func (e *encoder) collect(n *tree.Node) error {
	for _, entry := range n.Entries() {
		if !isArray(n) {
			ns, _, ok := splitProperty(entry.Segment)
			if !ok {
				return fmt.Errorf("%w: cannot resolve property %q", errMalformed, entry.Segment)
			}
			e.register(ns)
		}
		if child, ok := entry.Value.(*tree.Node); ok {
			if err := e.collect(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder) register(ns string) {
	if _, ok := e.prefixes[ns]; ok {
		return
	}
	p, known := nsToPrefix[ns]
	if !known || e.used[p] != "" {
		p = choosePrefix(e.used, ns)
	}
	e.prefixes[ns] = p
	e.used[p] = ns
}

func (e *encoder) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.enc.EncodeToken(t)
}

func (e *encoder) properties(n *tree.Node) {
	for _, entry := range n.Entries() {
		ns, local, _ := splitProperty(entry.Segment)
		e.value(xml.Name{Local: e.prefixes[ns] + ":" + local}, nil, entry.Value)
	}
}

// value writes one property or array item element.
func (e *encoder) value(name xml.Name, attr []xml.Attr, v any) {
	child, ok := v.(*tree.Node)
	if !ok {
		e.token(xml.StartElement{Name: name, Attr: attr})
		e.token(xml.CharData(scalarText(v)))
		e.token(xml.EndElement{Name: name})
		return
	}
	if !isArray(child) {
		attr = append(attr, xml.Attr{Name: xml.Name{Local: "rdf:parseType"}, Value: "Resource"})
		e.token(xml.StartElement{Name: name, Attr: attr})
		e.properties(child)
		e.token(xml.EndElement{Name: name})
		return
	}

	container := xml.Name{Local: "rdf:" + containerNames[child.Format()]}
	li := xml.Name{Local: "rdf:li"}
	e.token(xml.StartElement{Name: name, Attr: attr})
	e.token(xml.StartElement{Name: container})
	for _, item := range child.Entries() {
		var itemAttr []xml.Attr
		if lang := strings.TrimPrefix(item.Segment, "/"); child.Format() == FormatAlt && !strings.HasPrefix(lang, "{") {
			itemAttr = []xml.Attr{{Name: xml.Name{Local: "xml:lang"}, Value: lang}}
		}
		e.value(li, itemAttr, item.Value)
	}
	e.token(xml.EndElement{Name: container})
	e.token(xml.EndElement{Name: name})
}

var containerNames = map[string]string{
	FormatBag: "Bag",
	FormatSeq: "Seq",
	FormatAlt: "Alt",
}

func isArray(n *tree.Node) bool {
	_, ok := containerNames[n.Format()]
	return ok
}

func scalarText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(v)
}
