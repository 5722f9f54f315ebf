package types

import (
	"fmt"
	"strings"
)

// wildcardName is the type-name position of a wildcard endpoint in its text
// form, e.g. "c__*".
const wildcardName = "*"

// InboundOutboundType constrains one end of a relation type. It names either
// a component or an entity type, concretely or as the "any" wildcard of that
// kind. The zero value is invalid.
type InboundOutboundType struct {
	kind Kind
	any  bool
	nt   NamespacedType
}

// ComponentEndpoint matches entities that carry ty.
func ComponentEndpoint(ty ComponentTypeID) InboundOutboundType {
	return InboundOutboundType{kind: KindComponent, nt: ty.nt}
}

// EntityTypeEndpoint matches instances of ty.
func EntityTypeEndpoint(ty EntityTypeID) InboundOutboundType {
	return InboundOutboundType{kind: KindEntityType, nt: ty.nt}
}

// AnyComponent matches every component.
func AnyComponent() InboundOutboundType {
	return InboundOutboundType{kind: KindComponent, any: true}
}

// AnyEntityType matches every entity type.
func AnyEntityType() InboundOutboundType {
	return InboundOutboundType{kind: KindEntityType, any: true}
}

// ParseInboundOutboundType parses a canonical component or entity type id, or
// the wildcards "c__*" and "e__*".
func ParseInboundOutboundType(s string) (InboundOutboundType, error) {
	switch s {
	case KindComponent.Tag() + TypeIDSeparator + wildcardName:
		return AnyComponent(), nil
	case KindEntityType.Tag() + TypeIDSeparator + wildcardName:
		return AnyEntityType(), nil
	}
	def, err := ParseTypeDefinition(s)
	if err != nil {
		return InboundOutboundType{}, err
	}
	if def.Kind != KindComponent && def.Kind != KindEntityType {
		return InboundOutboundType{}, &ParseError{Input: s, Field: FieldKind, Err: ErrKindMismatch}
	}
	return InboundOutboundType{kind: def.Kind, nt: def.NamespacedType}, nil
}

// Kind returns KindComponent or KindEntityType.
func (t InboundOutboundType) Kind() Kind {
	return t.kind
}

// IsAny reports whether t is a wildcard.
func (t InboundOutboundType) IsAny() bool {
	return t.any
}

// IsZero reports whether t is the zero value.
func (t InboundOutboundType) IsZero() bool {
	return t.kind == 0
}

// Matches reports whether candidate may appear at this endpoint. A wildcard
// matches every candidate of its kind; a concrete endpoint matches only the
// identical type.
func (t InboundOutboundType) Matches(candidate TypeDefinition) bool {
	if t.kind != candidate.Kind {
		return false
	}
	return t.any || t.nt == candidate.NamespacedType
}

// MatchesEntity reports whether an entity of type ty carrying components may
// appear at this endpoint. A component endpoint matches when any of the
// components matches, so the component wildcard needs at least one component.
func (t InboundOutboundType) MatchesEntity(ty EntityTypeID, components []ComponentTypeID) bool {
	switch t.kind {
	case KindEntityType:
		return t.Matches(ty.TypeDefinition())
	case KindComponent:
		for _, c := range components {
			if t.Matches(c.TypeDefinition()) {
				return true
			}
		}
	}
	return false
}

// ComponentTypeID returns the concrete component. It fails with ErrIsAWildcard
// for a wildcard and ErrKindMismatch for an entity type endpoint.
func (t InboundOutboundType) ComponentTypeID() (ComponentTypeID, error) {
	if t.kind != KindComponent {
		return ComponentTypeID{}, fmt.Errorf("%w: %s is not a component endpoint", ErrKindMismatch, t)
	}
	if t.any {
		return ComponentTypeID{}, ErrIsAWildcard
	}
	return ComponentTypeID{nt: t.nt}, nil
}

// EntityTypeID returns the concrete entity type. It fails with ErrIsAWildcard
// for a wildcard and ErrKindMismatch for a component endpoint.
func (t InboundOutboundType) EntityTypeID() (EntityTypeID, error) {
	if t.kind != KindEntityType {
		return EntityTypeID{}, fmt.Errorf("%w: %s is not an entity type endpoint", ErrKindMismatch, t)
	}
	if t.any {
		return EntityTypeID{}, ErrIsAWildcard
	}
	return EntityTypeID{nt: t.nt}, nil
}

// TypeDefinition returns the concrete type. It fails with ErrIsAWildcard for a
// wildcard.
func (t InboundOutboundType) TypeDefinition() (TypeDefinition, error) {
	if t.any {
		return TypeDefinition{}, ErrIsAWildcard
	}
	if t.IsZero() {
		return TypeDefinition{}, ErrInvalidTypeID
	}
	return TypeDefinition{Kind: t.kind, NamespacedType: t.nt}, nil
}

func (t InboundOutboundType) String() string {
	if t.IsZero() {
		return ""
	}
	if t.any {
		return t.kind.Tag() + TypeIDSeparator + wildcardName
	}
	return TypeDefinition{Kind: t.kind, NamespacedType: t.nt}.String()
}

// MarshalText implements encoding.TextMarshaler.
func (t InboundOutboundType) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("%w: zero endpoint", ErrInvalidTypeID)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InboundOutboundType) UnmarshalText(text []byte) error {
	parsed, err := ParseInboundOutboundType(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
