package rdf

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	xmlNamespace  = "http://www.w3.org/XML/1998/namespace"
	rdfNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	metaNamespace = "adobe:ns:meta/"
)

// prefixToNS lists the namespaces commonly found in photo XMP.
var prefixToNS = map[string]string{
	"dc":             "http://purl.org/dc/elements/1.1/",
	"xmp":            "http://ns.adobe.com/xap/1.0/",
	"xmpMM":          "http://ns.adobe.com/xap/1.0/mm/",
	"xmpRights":      "http://ns.adobe.com/xap/1.0/rights/",
	"xmpidq":         "http://ns.adobe.com/xmp/Identifier/qual/1.0/",
	"stRef":          "http://ns.adobe.com/xap/1.0/sType/ResourceRef#",
	"stEvt":          "http://ns.adobe.com/xap/1.0/sType/ResourceEvent#",
	"photoshop":      "http://ns.adobe.com/photoshop/1.0/",
	"tiff":           "http://ns.adobe.com/tiff/1.0/",
	"exif":           "http://ns.adobe.com/exif/1.0/",
	"exifEX":         "http://cipa.jp/exif/1.0/",
	"aux":            "http://ns.adobe.com/exif/1.0/aux/",
	"crs":            "http://ns.adobe.com/camera-raw-settings/1.0/",
	"pdf":            "http://ns.adobe.com/pdf/1.3/",
	"Iptc4xmpCore":   "http://iptc.org/std/Iptc4xmpCore/1.0/xmlns/",
	"Iptc4xmpExt":    "http://iptc.org/std/Iptc4xmpExt/2008-02-29/",
	"MicrosoftPhoto": "http://ns.microsoft.com/photo/1.0/",
}

var nsToPrefix = func() map[string]string {
	m := make(map[string]string, len(prefixToNS))
	for p, ns := range prefixToNS {
		m[ns] = p
	}
	return m
}()

// propertySegment names a property in the tree: "/prefix:name" for
// well-known namespaces, "/{wstr=URI}:name" otherwise.
func propertySegment(ns, local string) string {
	if p, ok := nsToPrefix[ns]; ok {
		return "/" + p + ":" + local
	}
	return "/{wstr=" + ns + "}:" + local
}

// splitProperty is the inverse of propertySegment.
func splitProperty(seg string) (ns, local string, ok bool) {
	s := strings.TrimPrefix(seg, "/")
	if rest, found := strings.CutPrefix(s, "{wstr="); found {
		end := strings.Index(rest, "}:")
		if end < 0 {
			return "", "", false
		}
		return rest[:end], rest[end+2:], rest[end+2:] != ""
	}
	p, local, found := strings.Cut(s, ":")
	if !found || local == "" {
		return "", "", false
	}
	ns, ok = prefixToNS[p]
	return ns, local, ok
}

// choosePrefix picks an unused prefix for ns from the last element of its
// path, falling back to "ns".
func choosePrefix(used map[string]string, ns string) string {
	prefix := strings.TrimRight(ns, "/#")
	if i := strings.LastIndexAny(prefix, "/:"); i >= 0 {
		prefix = prefix[i+1:]
	}
	if !isName(prefix) || (len(prefix) >= 3 && strings.EqualFold(prefix[:3], "xml")) {
		prefix = "ns"
	}
	if _, taken := used[prefix]; !taken {
		return prefix
	}
	for i := 1; ; i++ {
		if id := prefix + strconv.Itoa(i); used[id] == "" {
			return id
		}
	}
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			continue
		}
		return false
	}
	return true
}
