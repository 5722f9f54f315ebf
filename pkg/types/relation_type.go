package types

import "fmt"

// RelationType is a concrete relation type between an outbound and an inbound
// endpoint.
type RelationType struct {
	Outbound    InboundOutboundType `json:"outbound"`
	Type        RelationTypeID      `json:"type"`
	Inbound     InboundOutboundType `json:"inbound"`
	Description string              `json:"description,omitempty"`
	Components  ComponentTypeIDs    `json:"components"`
	Properties  PropertyTypes       `json:"properties"`
	Extensions  Extensions          `json:"extensions"`
}

// NewRelationType returns a relation type from outbound to inbound.
func NewRelationType(outbound InboundOutboundType, ty RelationTypeID, inbound InboundOutboundType, description string) *RelationType {
	return &RelationType{Outbound: outbound, Type: ty, Inbound: inbound, Description: description}
}

// WithComponents adds component references and returns t.
func (t *RelationType) WithComponents(components ...ComponentTypeID) *RelationType {
	t.Components.InsertAll(components...)
	return t
}

// WithProperties adds or replaces properties and returns t.
func (t *RelationType) WithProperties(props ...PropertyType) *RelationType {
	for _, p := range props {
		t.Properties.Push(p)
	}
	return t
}

// WithExtensions adds or replaces extensions and returns t.
func (t *RelationType) WithExtensions(exts ...Extension) *RelationType {
	for _, ext := range exts {
		t.Extensions.Push(ext)
	}
	return t
}

func (t *RelationType) TypeID() RelationTypeID             { return t.Type }
func (t *RelationType) TypeDefinition() TypeDefinition     { return t.Type.TypeDefinition() }
func (t *RelationType) ComponentSet() *ComponentTypeIDs    { return &t.Components }
func (t *RelationType) PropertySet() *PropertyTypes        { return &t.Properties }
func (t *RelationType) ExtensionSet() *Extensions          { return &t.Extensions }
func (t *RelationType) IsA(component ComponentTypeID) bool { return t.Components.Contains(component) }

// AcceptsOutbound reports whether an entity of type ty with components may be
// the outbound end.
func (t *RelationType) AcceptsOutbound(ty EntityTypeID, components []ComponentTypeID) bool {
	return t.Outbound.MatchesEntity(ty, components)
}

// AcceptsInbound reports whether an entity of type ty with components may be
// the inbound end.
func (t *RelationType) AcceptsInbound(ty EntityTypeID, components []ComponentTypeID) bool {
	return t.Inbound.MatchesEntity(ty, components)
}

// Validate checks that both endpoints are set. A zero endpoint has no
// textual form and could not be persisted.
func (t *RelationType) Validate() error {
	if t.Outbound.IsZero() {
		return fmt.Errorf("%w: %s has no outbound endpoint", ErrInvalidTypeID, t.Type)
	}
	if t.Inbound.IsZero() {
		return fmt.Errorf("%w: %s has no inbound endpoint", ErrInvalidTypeID, t.Type)
	}
	return nil
}

// Clone returns a deep copy.
func (t *RelationType) Clone() *RelationType {
	out := &RelationType{Outbound: t.Outbound, Type: t.Type, Inbound: t.Inbound, Description: t.Description}
	out.Components.ReplaceAll(t.Components.ToSlice()...)
	out.Properties.ReplaceAll(t.Properties.ToSlice()...)
	out.Extensions.ReplaceAll(t.Extensions.ToSlice()...)
	return out
}
