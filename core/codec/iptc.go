package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/media-metadata-convert/core/tree"
)

// ─── Photoshop image resource blocks ─────────────────────────────────────────

const resIPTC = 0x0404

var bim = []byte("8BIM")

// irbTree walks a run of 8BIM resources. The IPTC resource lands under
// /8bimiptc/iptc, anything else is kept raw as /{ushort=id}. The returned
// node is never nil.
func irbTree(data []byte) (*tree.Node, error) {
	n := tree.New("irb")
	i := 0
	for i+12 <= len(data) {
		if !bytes.Equal(data[i:i+4], bim) {
			return n, errors.Errorf("bad resource signature at offset %d", i)
		}
		id := binary.BigEndian.Uint16(data[i+4 : i+6])
		// Pascal name padded to even length including the length byte.
		nameLen := int(data[i+6])
		if nameLen%2 == 0 {
			nameLen++
		}
		i += 7 + nameLen
		if i+4 > len(data) {
			return n, errors.New("truncated resource header")
		}
		size := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if size < 0 || i+size > len(data) {
			return n, errors.Errorf("resource 0x%04X overruns block", id)
		}
		block := data[i : i+size]
		i += size + size%2

		if id == resIPTC {
			iptc, iimErr := iimTree(block)
			wrap := tree.New("8bimiptc")
			if err := wrap.SetQuery("/iptc", iptc); err != nil {
				return n, err
			}
			if err := n.SetQuery("/8bimiptc", wrap); err != nil {
				return n, err
			}
			if iimErr != nil {
				return n, errors.Wrap(iimErr, "iptc")
			}
			continue
		}
		if err := n.SetQuery(tree.UShort(id), append([]byte(nil), block...)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ─── IPTC-IIM ────────────────────────────────────────────────────────────────

// Application record (2) dataset names.
var iptcFieldNames = map[byte]string{
	0x00: "RecordVersion",
	0x05: "ObjectName",
	0x0A: "Urgency",
	0x0F: "Category",
	0x14: "SupplementalCategory",
	0x19: "Keywords",
	0x1E: "ReleaseDate",
	0x23: "ReleaseTime",
	0x28: "SpecialInstructions",
	0x37: "DateCreated",
	0x3C: "TimeCreated",
	0x3E: "DigitalCreationDate",
	0x3F: "DigitalCreationTime",
	0x41: "OriginatingProgram",
	0x50: "By-line",
	0x55: "By-lineTitle",
	0x5A: "City",
	0x5C: "Sub-location",
	0x5F: "Province/State",
	0x64: "Country/PrimaryLocationCode",
	0x65: "Country/PrimaryLocationName",
	0x67: "OriginalTransmissionReference",
	0x69: "Headline",
	0x6E: "Credit",
	0x73: "Source",
	0x74: "CopyrightNotice",
	0x76: "Contact",
	0x78: "Caption/Abstract",
	0x7A: "Writer/Editor",
}

var iptcFieldIDs = func() map[string]byte {
	m := make(map[string]byte, len(iptcFieldNames))
	for id, name := range iptcFieldNames {
		m[name] = id
	}
	return m
}()

const (
	iimTagMarker = 0x1C
	iimAppRecord = 2
)

// iimName is the segment name of a dataset. Application record datasets
// use their IIM name, everything else "record:dataset".
func iimName(record, dataset byte) string {
	if record == iimAppRecord {
		if name, ok := iptcFieldNames[dataset]; ok {
			return name
		}
	}
	return fmt.Sprintf("%d:%d", record, dataset)
}

func iimID(name string) (record, dataset byte, ok bool) {
	if id, ok := iptcFieldIDs[name]; ok {
		return iimAppRecord, id, true
	}
	r, d, found := strings.Cut(name, ":")
	if !found {
		return 0, 0, false
	}
	rv, err1 := strconv.ParseUint(r, 10, 8)
	dv, err2 := strconv.ParseUint(d, 10, 8)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return byte(rv), byte(dv), true
}

// iimTree decodes IIM datasets into an "iptc" node with one "/{str=Name}"
// entry per dataset; repeats become "/[1]{str=Name}", "/[2]{str=Name}"...
// The returned node is never nil.
func iimTree(data []byte) (*tree.Node, error) {
	n := tree.New("iptc")
	seen := map[string]int{}
	i := 0
	for i+5 <= len(data) {
		if data[i] != iimTagMarker {
			return n, errors.Errorf("bad dataset marker at offset %d", i)
		}
		record, dataset := data[i+1], data[i+2]
		length := int(binary.BigEndian.Uint16(data[i+3 : i+5]))
		i += 5
		if length&0x8000 != 0 {
			return n, errors.New("extended dataset length not supported")
		}
		if i+length > len(data) {
			return n, errors.Errorf("dataset %d:%d overruns block", record, dataset)
		}
		name := iimName(record, dataset)
		seg := tree.Indexed(tree.Str(name), seen[name])
		seen[name]++
		if err := n.SetQuery(seg, string(data[i:i+length])); err != nil {
			return n, err
		}
		i += length
	}
	return n, nil
}

// encodeIIM is the inverse of iimTree. Datasets are written ordered by
// record and dataset number, keeping tree order among repeats.
func encodeIIM(n *tree.Node) ([]byte, error) {
	type dataset struct {
		record, id byte
		value      []byte
	}
	var sets []dataset
	for _, e := range n.Entries() {
		seg := e.Segment
		if strings.HasPrefix(seg, "/[") {
			if end := strings.IndexByte(seg, ']'); end > 0 {
				seg = "/" + seg[end+1:]
			}
		}
		name, ok := strings.CutPrefix(seg, "/{str=")
		name, ok2 := strings.CutSuffix(name, "}")
		if !ok || !ok2 {
			return nil, errors.Errorf("iptc: unexpected segment %q", e.Segment)
		}
		record, id, ok := iimID(name)
		if !ok {
			return nil, errors.Errorf("iptc: unknown dataset %q", name)
		}
		var value []byte
		switch v := e.Value.(type) {
		case string:
			value = []byte(v)
		case []byte:
			value = v
		default:
			return nil, errors.Errorf("iptc: dataset %q has non-text value", name)
		}
		if len(value) > 0x7FFF {
			return nil, errors.Errorf("iptc: dataset %q too long", name)
		}
		sets = append(sets, dataset{record: record, id: id, value: value})
	}
	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].record != sets[j].record {
			return sets[i].record < sets[j].record
		}
		return sets[i].id < sets[j].id
	})

	var buf bytes.Buffer
	for _, s := range sets {
		buf.Write([]byte{iimTagMarker, s.record, s.id})
		binary.Write(&buf, binary.BigEndian, uint16(len(s.value)))
		buf.Write(s.value)
	}
	return buf.Bytes(), nil
}
