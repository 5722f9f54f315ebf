package reactive

import (
	"slices"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// Entity is a runtime instance of an entity type, identified by its type and
// id. It is shared by pointer; every method is safe for concurrent use.
type Entity struct {
	instance
	ty types.EntityTypeID
	id uuid.UUID

	// typeComponents are the components declared by the entity type the
	// entity was built from. Fixed at build time; not memberships.
	typeComponents []types.ComponentTypeID
}

// Type returns the entity type.
func (e *Entity) Type() types.EntityTypeID { return e.ty }

// ID returns the entity id.
func (e *Entity) ID() uuid.UUID { return e.id }

// TypeComponents returns the components declared by the entity type the
// entity was built from, sorted. Attached components are reported by
// Components.
func (e *Entity) TypeComponents() []types.ComponentTypeID {
	return slices.Clone(e.typeComponents)
}

// matchComponents is the component set relation endpoints are matched
// against: type components and attached components.
func (e *Entity) matchComponents() []types.ComponentTypeID {
	return append(e.TypeComponents(), e.Components()...)
}

// Instance returns a data snapshot of the entity.
func (e *Entity) Instance() types.EntityInstance {
	return types.EntityInstance{
		Type:        e.ty,
		ID:          e.id,
		Description: e.Description(),
		Properties:  e.Properties(),
		Components:  e.Components(),
		Extensions:  e.Extensions(),
	}
}

// NewEntityFromInstance builds a reactive entity from a data record. Every
// property is mutable.
func NewEntityFromInstance(inst types.EntityInstance) *Entity {
	b := NewEntityBuilderFor(inst.Type).ID(inst.ID).Description(inst.Description)
	for name, v := range inst.Properties {
		b.Property(name, v)
	}
	for _, c := range inst.Components {
		b.Component(c)
	}
	e := b.Build()
	for _, ext := range inst.Extensions {
		e.extensions.Push(ext)
	}
	return e
}

type builderProperty struct {
	mutability types.Mutability
	value      any
}

// EntityBuilder assembles an Entity.
type EntityBuilder struct {
	ty          types.EntityTypeID
	id          uuid.UUID
	description string
	order       []string
	props       map[string]builderProperty
	components  []types.ComponentTypeID

	typeComponents []types.ComponentTypeID
}

// NewEntityBuilder starts an entity of et with a fresh id and one property
// per declared property type holding its default value. No components or
// behaviours are attached; the type's components are remembered for relation
// endpoint matching.
func NewEntityBuilder(et *types.EntityType) *EntityBuilder {
	b := NewEntityBuilderFor(et.Type)
	b.typeComponents = et.Components.ToSlice()
	for _, pt := range et.Properties.ToSlice() {
		b.PropertyWithMutability(pt.Name, pt.EffectiveMutability(), pt.DefaultValue())
	}
	return b
}

// NewEntityBuilderFor starts an entity of ty with a fresh id and no
// properties.
func NewEntityBuilderFor(ty types.EntityTypeID) *EntityBuilder {
	return &EntityBuilder{
		ty:    ty,
		id:    uuid.Must(uuid.NewV7()),
		props: make(map[string]builderProperty),
	}
}

// ID overrides the generated id.
func (b *EntityBuilder) ID(id uuid.UUID) *EntityBuilder {
	b.id = id
	return b
}

// Description sets the description.
func (b *EntityBuilder) Description(description string) *EntityBuilder {
	b.description = description
	return b
}

// Property sets the initial value of name, adding a mutable property if it
// is not declared yet.
func (b *EntityBuilder) Property(name string, value any) *EntityBuilder {
	if p, ok := b.props[name]; ok {
		p.value = value
		b.props[name] = p
		return b
	}
	return b.PropertyWithMutability(name, types.Mutable, value)
}

// PropertyWithMutability declares name with an initial value.
func (b *EntityBuilder) PropertyWithMutability(name string, mutability types.Mutability, value any) *EntityBuilder {
	if _, ok := b.props[name]; !ok {
		b.order = append(b.order, name)
	}
	b.props[name] = builderProperty{mutability: mutability, value: value}
	return b
}

// Component records a component membership.
func (b *EntityBuilder) Component(component types.ComponentTypeID) *EntityBuilder {
	b.components = append(b.components, component)
	return b
}

// Build returns the entity.
func (b *EntityBuilder) Build() *Entity {
	e := &Entity{ty: b.ty, id: b.id, typeComponents: slices.Clone(b.typeComponents)}
	e.init(b.id, b.description)
	for _, name := range b.order {
		p := b.props[name]
		e.properties.Add(NewProperty(b.id, name, p.mutability, p.value))
	}
	e.components.InsertAll(b.components...)
	return e
}
