// Package fieldpath resolves dotted field-path strings against a message's
// descriptor and applies get/set/has/clear operations to a dynamic message,
// the way a generated accessor chain would for statically-typed code. There
// is no generated-code analog to imitate here, so the walk is written
// directly against the protoreflect.Value/Message vocabulary that the wire
// codec and JSON codec already share.
package fieldpath

import (
	"strconv"

	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// subscriptKind distinguishes a bare field reference from an indexed or
// keyed one within a single path component.
type subscriptKind int

const (
	subscriptNone subscriptKind = iota
	subscriptIndex
	subscriptKey
)

// Component is one dot-separated segment of a parsed path: a field name,
// plus an optional repeated-field index or map-field key.
type Component struct {
	Name      protoreflect.Name
	Subscript subscriptKind
	Index     int
	Key       string
}

// Parse splits path into its components. A leading "$" (with or without a
// following ".") is accepted and discarded, matching the common convention
// of anchoring a path at the message root. Each remaining segment is a bare
// identifier optionally followed by "[n]" or "['key']"/"[\"key\"]".
func Parse(path string) ([]Component, error) {
	s := path
	if len(s) > 0 && s[0] == '$' {
		s = s[1:]
		if len(s) > 0 && s[0] == '.' {
			s = s[1:]
		}
	}
	if s == "" {
		return nil, errors.New(errors.KindFieldNotFound, "fieldpath: empty path %q", path)
	}

	var comps []Component
	for {
		comp, rest, err := parseSegment(s, path)
		if err != nil {
			return nil, err
		}
		comps = append(comps, comp)
		s = rest
		if s == "" {
			return comps, nil
		}
		if s[0] != '.' {
			return nil, errors.New(errors.KindFieldNotFound, "fieldpath: expected '.' before %q in %q", s, path)
		}
		s = s[1:]
		if s == "" {
			return nil, errors.New(errors.KindFieldNotFound, "fieldpath: trailing '.' in %q", path)
		}
	}
}

func parseSegment(s, full string) (Component, string, error) {
	i := 0
	for i < len(s) && isIdentByte(s[i], i == 0) {
		i++
	}
	if i == 0 {
		return Component{}, "", errors.New(errors.KindFieldNotFound, "fieldpath: expected field name at %q in %q", s, full)
	}
	comp := Component{Name: protoreflect.Name(s[:i])}
	rest := s[i:]
	if rest == "" || rest[0] != '[' {
		return comp, rest, nil
	}

	end := indexByte(rest, ']')
	if end < 0 {
		return Component{}, "", errors.New(errors.KindFieldNotFound, "fieldpath: unterminated '[' in %q", full)
	}
	inner := rest[1:end]
	rest = rest[end+1:]

	if n := len(inner); n >= 2 && ((inner[0] == '\'' && inner[n-1] == '\'') || (inner[0] == '"' && inner[n-1] == '"')) {
		comp.Subscript = subscriptKey
		comp.Key = inner[1 : n-1]
		return comp, rest, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return Component{}, "", errors.New(errors.KindFieldNotFound, "fieldpath: invalid subscript %q in %q", inner, full)
	}
	comp.Subscript = subscriptIndex
	comp.Index = n
	return comp, rest, nil
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case !first && '0' <= c && c <= '9':
		return true
	default:
		return false
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
