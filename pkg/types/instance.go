package types

import (
	"bytes"
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// EntityInstance is the plain data record of an entity: its type, id,
// property values and memberships. Flow types hold instances in this form and
// reactive entities snapshot to it.
type EntityInstance struct {
	Type        EntityTypeID      `json:"type"`
	ID          uuid.UUID         `json:"id"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]any    `json:"properties,omitempty"`
	Components  []ComponentTypeID `json:"components,omitempty"`
	Extensions  []Extension       `json:"extensions,omitempty"`
}

// NewEntityInstance returns an instance of ty with a fresh id and the default
// value of every property in props.
func NewEntityInstance(ty EntityTypeID, props ...PropertyType) EntityInstance {
	inst := EntityInstance{
		Type:       ty,
		ID:         uuid.Must(uuid.NewV7()),
		Properties: make(map[string]any, len(props)),
	}
	for _, p := range props {
		inst.Properties[p.Name] = p.DefaultValue()
	}
	return inst
}

// Clone returns a copy whose maps and slices are not shared.
func (e EntityInstance) Clone() EntityInstance {
	e.Properties = maps.Clone(e.Properties)
	e.Components = append([]ComponentTypeID(nil), e.Components...)
	e.Extensions = append([]Extension(nil), e.Extensions...)
	return e
}

// RelationInstanceID identifies a relation by its outbound entity, relation
// type and inbound entity.
type RelationInstanceID struct {
	OutboundID uuid.UUID
	Type       RelationTypeID
	InboundID  uuid.UUID
}

// String renders the id as "<outbound>--[<type>]--><inbound>".
func (id RelationInstanceID) String() string {
	return fmt.Sprintf("%s--[%s]-->%s", id.OutboundID, id.Type, id.InboundID)
}

// Compare orders ids by outbound, type, then inbound.
func (id RelationInstanceID) Compare(other RelationInstanceID) int {
	if c := compareUUID(id.OutboundID, other.OutboundID); c != 0 {
		return c
	}
	if c := id.Type.Compare(other.Type); c != 0 {
		return c
	}
	return compareUUID(id.InboundID, other.InboundID)
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// RelationInstance is the plain data record of a relation.
type RelationInstance struct {
	OutboundID  uuid.UUID         `json:"outbound_id"`
	Type        RelationTypeID    `json:"type"`
	InboundID   uuid.UUID         `json:"inbound_id"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]any    `json:"properties,omitempty"`
	Components  []ComponentTypeID `json:"components,omitempty"`
	Extensions  []Extension       `json:"extensions,omitempty"`
}

// ID returns the relation's identity.
func (r RelationInstance) ID() RelationInstanceID {
	return RelationInstanceID{OutboundID: r.OutboundID, Type: r.Type, InboundID: r.InboundID}
}

// Clone returns a copy whose maps and slices are not shared.
func (r RelationInstance) Clone() RelationInstance {
	r.Properties = maps.Clone(r.Properties)
	r.Components = append([]ComponentTypeID(nil), r.Components...)
	r.Extensions = append([]Extension(nil), r.Extensions...)
	return r
}
