package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitPath breaks an absolute query path into its segments, each keeping
// its leading slash. Slashes inside a brace group such as "{str=a/b}" do not
// split. "/" alone yields no segments.
func SplitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrQueryNotSupported, path)
	}
	if path == "/" {
		return nil, nil
	}
	var segs []string
	start, depth := 0, 0
	for i := 1; i < len(path); i++ {
		switch path[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrQueryNotSupported, path)
			}
		case '/':
			if depth == 0 {
				segs = append(segs, path[start:i])
				start = i
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrQueryNotSupported, path)
	}
	segs = append(segs, path[start:])
	for _, s := range segs {
		if s == "/" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrQueryNotSupported, path)
		}
	}
	return segs, nil
}

// UShort returns the segment for a numeric 16-bit tag id, "/{ushort=N}".
func UShort(id uint16) string {
	return "/{ushort=" + strconv.Itoa(int(id)) + "}"
}

// Str returns a string-keyed segment, "/{str=name}".
func Str(name string) string {
	return "/{str=" + name + "}"
}

// Indexed returns the n-th occurrence of seg: seg itself for n == 0,
// otherwise "/[n]name".
func Indexed(seg string, n int) string {
	if n == 0 {
		return seg
	}
	return "/[" + strconv.Itoa(n) + "]" + strings.TrimPrefix(seg, "/")
}

// ParseUShort extracts N from a "/{ushort=N}" segment.
func ParseUShort(seg string) (uint16, bool) {
	s, ok := strings.CutPrefix(seg, "/{ushort=")
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, "}")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
