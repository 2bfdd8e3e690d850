// Package rdf converts XMP packets (RDF/XML) to and from metadata subtrees.
//
// Properties become segments named "/prefix:name". Arrays are nodes with
// format "xmpbag", "xmpseq" or "xmpalt" whose items are "/{ulong=i}", or the
// xml:lang value for language alternatives. Structures are "xmpstruct"
// nodes.
package rdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// Node formats used for XMP containers.
const (
	FormatXMP    = "xmp"
	FormatBag    = "xmpbag"
	FormatSeq    = "xmpseq"
	FormatAlt    = "xmpalt"
	FormatStruct = "xmpstruct"
)

var errMalformed = errors.New("rdf: malformed XMP data")

var (
	elemRDF         = xml.Name{Space: rdfNamespace, Local: "RDF"}
	elemDescription = xml.Name{Space: rdfNamespace, Local: "Description"}
	elemLi          = xml.Name{Space: rdfNamespace, Local: "li"}
	attrAbout       = xml.Name{Space: rdfNamespace, Local: "about"}
	attrResource    = xml.Name{Space: rdfNamespace, Local: "resource"}
	attrParseType   = xml.Name{Space: rdfNamespace, Local: "parseType"}
	attrLang        = xml.Name{Space: xmlNamespace, Local: "lang"}
)

var arrayFormats = map[string]string{
	"Bag": FormatBag,
	"Seq": FormatSeq,
	"Alt": FormatAlt,
}

type element struct {
	name     xml.Name
	attr     []xml.Attr
	children []*element
	text     strings.Builder
}

func (el *element) attrValue(name xml.Name) (string, bool) {
	for _, a := range el.attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parse reads an XMP packet into a node of format "xmp". Every
// rdf:Description below rdf:RDF contributes its properties; a packet without
// rdf:RDF yields an empty node.
func Parse(packet []byte) (*tree.Node, error) {
	descs, err := readDescriptions(bytes.NewReader(packet))
	if err != nil {
		return nil, err
	}
	out := tree.New(FormatXMP)
	for _, d := range descs {
		if err := addProperties(out, d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readDescriptions collects the rdf:Description elements that are direct
// children of rdf:RDF, as small element trees.
func readDescriptions(r io.Reader) ([]*element, error) {
	dec := xml.NewDecoder(r)
	var (
		stack  []*element
		descs  []*element
		inRDF  int
		rdfTop = -1
	)
	for {
		t, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		switch t := t.(type) {
		case xml.StartElement:
			if inRDF == 0 {
				if t.Name == elemRDF {
					inRDF = 1
					rdfTop = len(stack)
				}
				stack = append(stack, nil)
				continue
			}
			el := &element{name: t.Name, attr: t.Copy().Attr}
			if parent := stack[len(stack)-1]; parent != nil {
				parent.children = append(parent.children, el)
			} else if len(stack) == rdfTop+1 && t.Name == elemDescription {
				descs = append(descs, el)
			} else {
				return nil, fmt.Errorf("%w: unexpected %s in rdf:RDF", errMalformed, t.Name.Local)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errMalformed
			}
			stack = stack[:len(stack)-1]
			if inRDF == 1 && len(stack) == rdfTop {
				inRDF = 0
			}
		case xml.CharData:
			if len(stack) > 0 {
				if el := stack[len(stack)-1]; el != nil {
					el.text.Write(t)
				}
			}
		}
	}
	return descs, nil
}

// addProperties stores the attribute shorthand and child property elements
// of a description or structure into n.
func addProperties(n *tree.Node, el *element) error {
	for _, a := range el.attr {
		if skipAttr(a.Name) {
			continue
		}
		if err := n.SetQuery(propertySegment(a.Name.Space, a.Name.Local), a.Value); err != nil {
			return err
		}
	}
	for _, child := range el.children {
		v, err := propertyValue(child)
		if err != nil {
			return err
		}
		if err := n.SetQuery(propertySegment(child.name.Space, child.name.Local), v); err != nil {
			return err
		}
	}
	return nil
}

func skipAttr(name xml.Name) bool {
	return name.Space == "xmlns" || name.Local == "xmlns" ||
		name.Space == rdfNamespace || name.Space == xmlNamespace
}

func propertyValue(el *element) (any, error) {
	if res, ok := el.attrValue(attrResource); ok {
		return res, nil
	}
	if pt, _ := el.attrValue(attrParseType); pt == "Resource" {
		st := tree.New(FormatStruct)
		return st, addProperties(st, el)
	}
	if len(el.children) == 0 {
		if hasPropertyAttrs(el) {
			st := tree.New(FormatStruct)
			return st, addProperties(st, el)
		}
		return el.text.String(), nil
	}
	if len(el.children) == 1 {
		inner := el.children[0]
		if inner.name.Space == rdfNamespace {
			if format, ok := arrayFormats[inner.name.Local]; ok {
				return arrayValue(format, inner)
			}
			if inner.name == elemDescription {
				st := tree.New(FormatStruct)
				return st, addProperties(st, inner)
			}
		}
	}
	st := tree.New(FormatStruct)
	return st, addProperties(st, el)
}

func hasPropertyAttrs(el *element) bool {
	for _, a := range el.attr {
		if !skipAttr(a.Name) {
			return true
		}
	}
	return false
}

func arrayValue(format string, el *element) (*tree.Node, error) {
	arr := tree.New(format)
	i := 0
	for _, li := range el.children {
		if li.name != elemLi {
			return nil, fmt.Errorf("%w: %s inside rdf array", errMalformed, li.name.Local)
		}
		v, err := propertyValue(li)
		if err != nil {
			return nil, err
		}
		seg := ItemSegment(i)
		if lang, _ := li.attrValue(attrLang); lang != "" && format == FormatAlt {
			seg = "/" + lang
		}
		if err := arr.SetQuery(seg, v); err != nil {
			return nil, err
		}
		i++
	}
	return arr, nil
}

// ItemSegment names the i-th array item.
func ItemSegment(i int) string {
	return "/{ulong=" + strconv.Itoa(i) + "}"
}
