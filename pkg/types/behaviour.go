package types

import (
	"fmt"
	"strings"
)

// BehaviourTypeID identifies a behaviour that the plugin subsystem attaches to
// instances. Unlike the five type id kinds it carries no kind tag; its
// textual form is "<namespace>__<Name>".
type BehaviourTypeID struct {
	nt NamespacedType
}

// NewBehaviourTypeID validates namespace and typeName.
func NewBehaviourTypeID(namespace, typeName string) (BehaviourTypeID, error) {
	nt, err := NewNamespacedTypeFromStrings(namespace, typeName)
	if err != nil {
		return BehaviourTypeID{}, err
	}
	return BehaviourTypeID{nt: nt}, nil
}

// ParseBehaviourTypeID parses "<namespace>__<Name>".
func ParseBehaviourTypeID(s string) (BehaviourTypeID, error) {
	namespace, typeName, ok := strings.Cut(s, TypeIDSeparator)
	if !ok || namespace == "" {
		return BehaviourTypeID{}, &ParseError{Input: s, Field: FieldNamespace, Err: ErrEmptyNamespace}
	}
	if strings.Contains(typeName, TypeIDSeparator) {
		return BehaviourTypeID{}, &ParseError{Input: s, Field: FieldTrailing, Err: ErrTrailingFields}
	}
	if typeName == "" {
		return BehaviourTypeID{}, &ParseError{Input: s, Field: FieldName, Err: ErrEmptyTypeName}
	}
	ns, err := ParseNamespace(namespace)
	if err != nil {
		return BehaviourTypeID{}, &ParseError{Input: s, Field: FieldNamespace, Err: err}
	}
	nt, err := NewNamespacedType(ns, typeName)
	if err != nil {
		return BehaviourTypeID{}, &ParseError{Input: s, Field: FieldName, Err: err}
	}
	return BehaviourTypeID{nt: nt}, nil
}

// NamespacedType returns the wrapped namespaced type.
func (id BehaviourTypeID) NamespacedType() NamespacedType {
	return id.nt
}

// Namespace returns the path namespace.
func (id BehaviourTypeID) Namespace() Namespace {
	return id.nt.namespace
}

// TypeName returns the behaviour name.
func (id BehaviourTypeID) TypeName() string {
	return id.nt.typeName
}

func (id BehaviourTypeID) String() string {
	return id.nt.namespace.path + TypeIDSeparator + id.nt.typeName
}

// MarshalText implements encoding.TextMarshaler.
func (id BehaviourTypeID) MarshalText() ([]byte, error) {
	if id.nt.IsZero() {
		return nil, fmt.Errorf("%w: zero behaviour id", ErrInvalidTypeID)
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *BehaviourTypeID) UnmarshalText(text []byte) error {
	parsed, err := ParseBehaviourTypeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id BehaviourTypeID) newFrom(nt NamespacedType) BehaviourTypeID {
	return BehaviourTypeID{nt: nt}
}
