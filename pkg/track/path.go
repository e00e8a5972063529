package track

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind identifies how a path segment projects into its parent.
type SegmentKind uint8

const (
	SegmentRoot SegmentKind = iota
	SegmentField
	SegmentIndex
	SegmentKey
	SegmentVariant
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Label string
}

// String renders the segment the way it appears inside a path:
// "$", ".field", "[3]", "{\"key\"}" or "<Variant>".
func (s Segment) String() string {
	switch s.Kind {
	case SegmentRoot:
		return s.Label
	case SegmentField:
		return "." + s.Label
	case SegmentIndex:
		return "[" + s.Label + "]"
	case SegmentKey:
		return "{" + s.Label + "}"
	case SegmentVariant:
		return "<" + s.Label + ">"
	default:
		return "?" + s.Label
	}
}

// Path addresses a point in the value tree, starting at the root.
type Path []Segment

// String joins the segments, e.g. `$.todos{3}.value`.
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Depth is the number of segments below the root.
func (p Path) Depth() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// HasPrefix reports whether q is an ancestor of (or equal to) p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// child returns a new path with s appended. The receiver is never aliased.
func (p Path) child(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// keyLabel formats a map key so that keys of different dynamic types do not
// collide: strings are quoted, numbers are not.
func keyLabel(k any) string {
	return fmt.Sprintf("%#v", k)
}

// ParsePath parses the output of Path.String. Key labels are matched as
// written: quoted strings may contain any character, other labels may
// nest braces.
func ParsePath(s string) (Path, error) {
	root := strings.IndexAny(s, ".[{<")
	if root < 0 {
		root = len(s)
	}
	if root == 0 {
		return nil, fmt.Errorf("%w: %q: missing root name", ErrInvalidPath, s)
	}
	p := Path{{Kind: SegmentRoot, Label: s[:root]}}

	rest := s[root:]
	for rest != "" {
		var (
			seg Segment
			n   int
			err error
		)
		switch rest[0] {
		case '.':
			end := strings.IndexAny(rest[1:], ".[{<")
			if end < 0 {
				end = len(rest) - 1
			}
			seg, n = Segment{Kind: SegmentField, Label: rest[1 : 1+end]}, 1+end
			if seg.Label == "" {
				err = fmt.Errorf("empty field name")
			}
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				err = fmt.Errorf("unterminated index")
				break
			}
			seg, n = Segment{Kind: SegmentIndex, Label: rest[1:end]}, end+1
			if _, convErr := strconv.Atoi(seg.Label); convErr != nil {
				err = fmt.Errorf("index %q is not an integer", seg.Label)
			}
		case '{':
			var label string
			label, err = scanKey(rest[1:])
			seg, n = Segment{Kind: SegmentKey, Label: label}, len(label)+2
		case '<':
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				err = fmt.Errorf("unterminated variant")
				break
			}
			seg, n = Segment{Kind: SegmentVariant, Label: rest[1:end]}, end+1
		default:
			err = fmt.Errorf("unexpected %q", rest[0])
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %q at offset %d: %v", ErrInvalidPath, s, len(s)-len(rest), err)
		}
		p = append(p, seg)
		rest = rest[n:]
	}
	return p, nil
}

// scanKey returns the key label at the start of s, which follows an
// opening brace. s must contain the closing brace.
func scanKey(s string) (string, error) {
	if s != "" && (s[0] == '"' || s[0] == '`') {
		q, err := strconv.QuotedPrefix(s)
		if err != nil {
			return "", fmt.Errorf("bad quoted key")
		}
		if len(q) == len(s) || s[len(q)] != '}' {
			return "", fmt.Errorf("unterminated key")
		}
		return q, nil
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				if i == 0 {
					return "", fmt.Errorf("empty key")
				}
				return s[:i], nil
			}
			depth--
		}
	}
	return "", fmt.Errorf("unterminated key")
}
