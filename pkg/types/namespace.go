package types

import (
	"fmt"
	"strings"
	"unicode"
)

// Separators used by the textual forms of namespaces and type ids.
const (
	// NamespaceSeparator joins namespace segments ("demo::sub::Counter").
	NamespaceSeparator = "::"

	// TypeIDSeparator joins the fields of a canonical type id
	// ("e__demo__Counter"). It may never appear inside a segment.
	TypeIDSeparator = "__"
)

// Namespace is a validated, non-empty sequence of segments. Every segment but
// the last is a path segment; the last one may be a type segment (first rune
// upper-case). The zero value is the empty namespace and is only meaningful as
// "no namespace". Namespaces are immutable and comparable.
type Namespace struct {
	path string
}

// NewTopLevelNamespace creates a namespace with a single segment.
func NewTopLevelNamespace(segment string) (Namespace, error) {
	if err := ValidateSegment(segment); err != nil {
		return Namespace{}, err
	}
	return Namespace{path: segment}, nil
}

// MustNamespace parses s and panics on error. Intended for package-level
// declarations and tests.
func MustNamespace(s string) Namespace {
	ns, err := ParseNamespace(s)
	if err != nil {
		panic(err)
	}
	return ns
}

// ParseNamespace parses a "::"-separated namespace. A type segment is only
// accepted in the last position.
func ParseNamespace(s string) (Namespace, error) {
	if s == "" {
		return Namespace{}, ErrEmptyNamespace
	}
	var ns Namespace
	for i, segment := range strings.Split(s, NamespaceSeparator) {
		var err error
		if i == 0 {
			ns, err = NewTopLevelNamespace(segment)
		} else {
			ns, err = ns.Append(segment)
		}
		if err != nil {
			return Namespace{}, err
		}
	}
	return ns, nil
}

// Append returns a new namespace with segment appended.
// Returns ErrTypeCannotBeAppended if n already ends in a type segment and a
// *SegmentError if segment is invalid.
func (n Namespace) Append(segment string) (Namespace, error) {
	if n.IsType() {
		return Namespace{}, fmt.Errorf("%w: %s", ErrTypeCannotBeAppended, n)
	}
	if err := ValidateSegment(segment); err != nil {
		return Namespace{}, err
	}
	if n.path == "" {
		return Namespace{path: segment}, nil
	}
	return Namespace{path: n.path + NamespaceSeparator + segment}, nil
}

// Segments returns the namespace segments in order.
func (n Namespace) Segments() []string {
	if n.path == "" {
		return nil
	}
	return strings.Split(n.path, NamespaceSeparator)
}

// Last returns the last segment, or "" for the empty namespace.
func (n Namespace) Last() string {
	if i := strings.LastIndex(n.path, NamespaceSeparator); i >= 0 {
		return n.path[i+len(NamespaceSeparator):]
	}
	return n.path
}

// Parent returns the namespace without its last segment. ok is false when n
// has fewer than two segments.
func (n Namespace) Parent() (parent Namespace, ok bool) {
	i := strings.LastIndex(n.path, NamespaceSeparator)
	if i < 0 {
		return Namespace{}, false
	}
	return Namespace{path: n.path[:i]}, true
}

// IsType reports whether the last segment is a type segment.
func (n Namespace) IsType() bool {
	return n.path != "" && isTypeSegment(n.Last())
}

// IsPath reports whether n is non-empty and consists of path segments only.
func (n Namespace) IsPath() bool {
	return n.path != "" && !n.IsType()
}

// IsZero reports whether n is the empty namespace.
func (n Namespace) IsZero() bool {
	return n.path == ""
}

// HasPrefix reports whether prefix equals n or is an ancestor of n.
func (n Namespace) HasPrefix(prefix Namespace) bool {
	if prefix.path == "" || n.path == prefix.path {
		return true
	}
	return strings.HasPrefix(n.path, prefix.path+NamespaceSeparator)
}

func (n Namespace) String() string {
	return n.path
}

// MarshalText implements encoding.TextMarshaler.
func (n Namespace) MarshalText() ([]byte, error) {
	return []byte(n.path), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Namespace) UnmarshalText(text []byte) error {
	ns, err := ParseNamespace(string(text))
	if err != nil {
		return err
	}
	*n = ns
	return nil
}

// ValidateSegment checks a single namespace segment: ASCII letters, digits,
// '-' and '_' only, no leading or trailing '_', and no embedded "__".
func ValidateSegment(segment string) error {
	if segment == "" {
		return &SegmentError{Segment: segment, Err: ErrEmptySegment}
	}
	if strings.Contains(segment, TypeIDSeparator) || strings.Contains(segment, ":") {
		return &SegmentError{Segment: segment, Err: ErrSegmentContainsSeparator}
	}
	if strings.HasPrefix(segment, "_") || strings.HasSuffix(segment, "_") {
		return &SegmentError{Segment: segment, Err: ErrSegmentContainsSeparator}
	}
	for _, r := range segment {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return &SegmentError{Segment: segment, Err: ErrInvalidSegmentCharacter}
		}
	}
	return nil
}

// ValidateTypeName checks that name is a valid type segment.
func ValidateTypeName(name string) error {
	if err := ValidateSegment(name); err != nil {
		return err
	}
	if !isTypeSegment(name) {
		return &SegmentError{Segment: name, Err: ErrNotATypeSegment}
	}
	return nil
}

func isTypeSegment(segment string) bool {
	return segment != "" && segment[0] >= 'A' && segment[0] <= 'Z'
}
