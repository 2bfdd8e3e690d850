// Package tree models a decoded image's metadata as an ordered hierarchy of
// path segments, queried with slash-separated paths such as
// "/app1/ifd/exif/{ushort=37510}".
package tree

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotFound is returned when a well-formed path names nothing.
	ErrNotFound = errors.New("tree: path not found")

	// ErrQueryNotSupported is returned for malformed paths and for paths that
	// descend through a scalar value.
	ErrQueryNotSupported = errors.New("tree: query not supported")

	// ErrUnsupportedValue is returned by SetQuery for values that are neither
	// scalars nor nodes.
	ErrUnsupportedValue = errors.New("tree: unsupported value type")
)

// Entry is one (segment, value) pair of a node. Value is a scalar (string,
// []byte, bool, integer or float) or a *Node.
type Entry struct {
	Segment string
	Value   any
}

// Node is a named metadata container. Segments are unique within a node and
// entries keep insertion order.
type Node struct {
	format  string
	entries []Entry
	index   map[string]int
}

// New returns an empty node for the given container dialect, e.g. "jpg",
// "exif" or "xmp". An empty format means the codec reported none.
func New(format string) *Node {
	return &Node{format: format, index: make(map[string]int)}
}

// Format returns the container dialect the node belongs to.
func (n *Node) Format() string {
	return n.format
}

// Len returns the number of immediate entries.
func (n *Node) Len() int {
	return len(n.entries)
}

// Children returns the immediate segments in insertion order.
func (n *Node) Children() []string {
	segs := make([]string, len(n.entries))
	for i, e := range n.entries {
		segs[i] = e.Segment
	}
	return segs
}

// Entries returns a copy of the immediate entries in insertion order.
func (n *Node) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	copy(out, n.entries)
	return out
}

// GetQuery resolves path relative to n and returns the scalar or *Node found
// there.
func (n *Node) GetQuery(path string) (any, error) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	var cur any = n
	for _, seg := range segs {
		node, ok := cur.(*Node)
		if !ok {
			return nil, fmt.Errorf("%w: %q descends through a scalar", ErrQueryNotSupported, path)
		}
		i, ok := node.index[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		cur = node.entries[i].Value
	}
	return cur, nil
}

// ContainsQuery reports whether path resolves to a value.
func (n *Node) ContainsQuery(path string) bool {
	_, err := n.GetQuery(path)
	return err == nil
}

// SetQuery stores value at path, creating missing intermediate nodes with an
// empty format. Replacing an existing segment keeps its position.
func (n *Node) SetQuery(path string, value any) error {
	if !validValue(value) {
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	segs, err := SplitPath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return fmt.Errorf("%w: cannot replace the root", ErrQueryNotSupported)
	}
	cur := n
	for _, seg := range segs[:len(segs)-1] {
		i, ok := cur.index[seg]
		if !ok {
			child := New("")
			cur.put(seg, child)
			cur = child
			continue
		}
		child, ok := cur.entries[i].Value.(*Node)
		if !ok {
			return fmt.Errorf("%w: %q descends through a scalar", ErrQueryNotSupported, path)
		}
		cur = child
	}
	cur.put(segs[len(segs)-1], value)
	return nil
}

func (n *Node) put(seg string, value any) {
	if i, ok := n.index[seg]; ok {
		n.entries[i].Value = value
		return
	}
	n.index[seg] = len(n.entries)
	n.entries = append(n.entries, Entry{Segment: seg, Value: value})
}

// Clone returns a deep copy of n. Byte slices are copied too.
func (n *Node) Clone() *Node {
	out := New(n.format)
	for _, e := range n.entries {
		out.put(e.Segment, CloneValue(e.Value))
	}
	return out
}

// CloneValue deep-copies a scalar or node.
func CloneValue(v any) any {
	switch v := v.(type) {
	case *Node:
		return v.Clone()
	case []byte:
		return append([]byte(nil), v...)
	case []uint16:
		return append([]uint16(nil), v...)
	case []uint32:
		return append([]uint32(nil), v...)
	case []int64:
		return append([]int64(nil), v...)
	default:
		return v
	}
}

// Equal reports whether n and o have the same format and the same entries
// in the same order.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.format != o.format || len(n.entries) != len(o.entries) {
		return false
	}
	for i, e := range n.entries {
		f := o.entries[i]
		if e.Segment != f.Segment || !valueEqual(e.Value, f.Value) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch a := a.(type) {
	case *Node:
		b, ok := b.(*Node)
		return ok && a.Equal(b)
	case []byte:
		b, ok := b.([]byte)
		return ok && bytes.Equal(a, b)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Walk visits every entry depth-first in insertion order. path is the full
// path of the entry relative to n.
func (n *Node) Walk(fn func(path string, value any) error) error {
	return n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, any) error) error {
	for _, e := range n.entries {
		p := prefix + e.Segment
		if err := fn(p, e.Value); err != nil {
			return err
		}
		if child, ok := e.Value.(*Node); ok {
			if err := child.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func validValue(v any) bool {
	switch v.(type) {
	case *Node:
		return v.(*Node) != nil
	case string, []byte, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		[]uint16, []uint32, []int64:
		return true
	}
	return false
}
