package reactive

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// Relation is a runtime instance of a relation type between two entities,
// identified by (outbound id, type, inbound id).
type Relation struct {
	instance
	outbound *Entity
	ty       types.RelationTypeID
	inbound  *Entity
}

// Type returns the relation type.
func (r *Relation) Type() types.RelationTypeID { return r.ty }

// Outbound returns the outbound entity.
func (r *Relation) Outbound() *Entity { return r.outbound }

// Inbound returns the inbound entity.
func (r *Relation) Inbound() *Entity { return r.inbound }

// ID returns the relation identity.
func (r *Relation) ID() types.RelationInstanceID {
	return types.RelationInstanceID{OutboundID: r.outbound.ID(), Type: r.ty, InboundID: r.inbound.ID()}
}

// Instance returns a data snapshot of the relation.
func (r *Relation) Instance() types.RelationInstance {
	return types.RelationInstance{
		OutboundID:  r.outbound.ID(),
		Type:        r.ty,
		InboundID:   r.inbound.ID(),
		Description: r.Description(),
		Properties:  r.Properties(),
		Components:  r.Components(),
		Extensions:  r.Extensions(),
	}
}

// relationOwnerID derives a stable property owner id from the relation
// identity.
func relationOwnerID(id types.RelationInstanceID) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id.String()))
}

// RelationBuilder assembles a Relation.
type RelationBuilder struct {
	outbound    *Entity
	rt          *types.RelationType
	inbound     *Entity
	description string
	order       []string
	props       map[string]builderProperty
	components  []types.ComponentTypeID
}

// NewRelationBuilder starts a relation of rt from outbound to inbound with one
// property per declared property type holding its default value.
func NewRelationBuilder(outbound *Entity, rt *types.RelationType, inbound *Entity) *RelationBuilder {
	b := &RelationBuilder{
		outbound: outbound,
		rt:       rt,
		inbound:  inbound,
		props:    make(map[string]builderProperty),
	}
	for _, pt := range rt.Properties.ToSlice() {
		b.PropertyWithMutability(pt.Name, pt.EffectiveMutability(), pt.DefaultValue())
	}
	return b
}

// Description sets the description.
func (b *RelationBuilder) Description(description string) *RelationBuilder {
	b.description = description
	return b
}

// Property sets the initial value of name, adding a mutable property if it
// is not declared yet.
func (b *RelationBuilder) Property(name string, value any) *RelationBuilder {
	if p, ok := b.props[name]; ok {
		p.value = value
		b.props[name] = p
		return b
	}
	return b.PropertyWithMutability(name, types.Mutable, value)
}

// PropertyWithMutability declares name with an initial value.
func (b *RelationBuilder) PropertyWithMutability(name string, mutability types.Mutability, value any) *RelationBuilder {
	if _, ok := b.props[name]; !ok {
		b.order = append(b.order, name)
	}
	b.props[name] = builderProperty{mutability: mutability, value: value}
	return b
}

// Component records a component membership.
func (b *RelationBuilder) Component(component types.ComponentTypeID) *RelationBuilder {
	b.components = append(b.components, component)
	return b
}

// Build validates both entities against the relation type's endpoints and
// returns the relation. A component endpoint accepts an entity whose type
// declares the component or that has it attached. Fails with
// ErrEndpointMismatch when either end is not accepted.
func (b *RelationBuilder) Build() (*Relation, error) {
	if !b.rt.AcceptsOutbound(b.outbound.Type(), b.outbound.matchComponents()) {
		return nil, fmt.Errorf("%w: outbound %s of %s does not match %s",
			ErrEndpointMismatch, b.outbound.Type(), b.rt.Type, b.rt.Outbound)
	}
	if !b.rt.AcceptsInbound(b.inbound.Type(), b.inbound.matchComponents()) {
		return nil, fmt.Errorf("%w: inbound %s of %s does not match %s",
			ErrEndpointMismatch, b.inbound.Type(), b.rt.Type, b.rt.Inbound)
	}
	r := &Relation{outbound: b.outbound, ty: b.rt.Type, inbound: b.inbound}
	owner := relationOwnerID(r.ID())
	r.init(owner, b.description)
	for _, name := range b.order {
		p := b.props[name]
		r.properties.Add(NewProperty(owner, name, p.mutability, p.value))
	}
	r.components.InsertAll(b.components...)
	return r, nil
}
