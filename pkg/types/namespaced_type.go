package types

import (
	"fmt"
	"strings"
)

// NamespacedType pairs a path namespace with a type name. It uniquely
// identifies a type within its kind. The zero value is invalid.
type NamespacedType struct {
	namespace Namespace
	typeName  string
}

// NewNamespacedType validates namespace (non-empty, path only) and typeName
// (a type segment) and returns the pair.
func NewNamespacedType(namespace Namespace, typeName string) (NamespacedType, error) {
	if namespace.IsZero() {
		return NamespacedType{}, ErrEmptyNamespace
	}
	if namespace.IsType() {
		return NamespacedType{}, fmt.Errorf("%w: %s", ErrTypeCannotBeAppended, namespace)
	}
	if err := ValidateTypeName(typeName); err != nil {
		return NamespacedType{}, err
	}
	return NamespacedType{namespace: namespace, typeName: typeName}, nil
}

// NewNamespacedTypeFromStrings parses namespace and validates typeName.
func NewNamespacedTypeFromStrings(namespace, typeName string) (NamespacedType, error) {
	ns, err := ParseNamespace(namespace)
	if err != nil {
		return NamespacedType{}, err
	}
	return NewNamespacedType(ns, typeName)
}

// ParseNamespacedType parses the fully qualified form "ns::sub::TypeName".
func ParseNamespacedType(s string) (NamespacedType, error) {
	ns, err := ParseNamespace(s)
	if err != nil {
		return NamespacedType{}, err
	}
	if !ns.IsType() {
		return NamespacedType{}, &SegmentError{Segment: ns.Last(), Err: ErrNotATypeSegment}
	}
	parent, ok := ns.Parent()
	if !ok {
		return NamespacedType{}, ErrEmptyNamespace
	}
	return NamespacedType{namespace: parent, typeName: ns.Last()}, nil
}

// Namespace returns the path namespace.
func (t NamespacedType) Namespace() Namespace {
	return t.namespace
}

// TypeName returns the terminal type segment.
func (t NamespacedType) TypeName() string {
	return t.typeName
}

// FullyQualified returns the namespace with the type name appended as its
// trailing type segment.
func (t NamespacedType) FullyQualified() Namespace {
	return Namespace{path: t.String()}
}

// IsZero reports whether t is the zero value.
func (t NamespacedType) IsZero() bool {
	return t.typeName == ""
}

// Compare orders by namespace, then type name.
func (t NamespacedType) Compare(other NamespacedType) int {
	if c := strings.Compare(t.namespace.path, other.namespace.path); c != 0 {
		return c
	}
	return strings.Compare(t.typeName, other.typeName)
}

// String returns "namespace::TypeName".
func (t NamespacedType) String() string {
	if t.IsZero() {
		return ""
	}
	return t.namespace.path + NamespaceSeparator + t.typeName
}
