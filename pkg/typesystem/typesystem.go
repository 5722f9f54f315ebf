// Package typesystem owns the registries of components, entity types,
// relation types and flow types, and the cross-registry operations on them.
//
// A TypeSystem is constructed once and passed to whatever needs it. Every
// registry is safe for concurrent use; single operations are atomic per type
// id, while operations spanning the registry such as
// [TypeSystem.MergeComponentProperties] are not atomic as a whole.
package typesystem

import (
	"errors"
	"log/slog"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// Components is the component registry.
type Components struct {
	*registry[types.ComponentTag, *types.Component]
}

// EntityTypes is the entity type registry.
type EntityTypes struct {
	*registry[types.EntityTypeTag, *types.EntityType]
}

// AddComponent makes entity type id reference component. Properties are not
// merged; call [TypeSystem.MergeComponentProperties] for that.
func (r *EntityTypes) AddComponent(id types.EntityTypeID, component types.ComponentTypeID) error {
	return addComponent(r.registry, id, component)
}

// RemoveComponent drops the reference to component. Properties merged from it
// stay on the type.
func (r *EntityTypes) RemoveComponent(id types.EntityTypeID, component types.ComponentTypeID) error {
	return removeComponent(r.registry, id, component)
}

// RelationTypes is the relation type registry.
type RelationTypes struct {
	*registry[types.RelationTypeTag, *types.RelationType]
}

// AddComponent makes relation type id reference component.
func (r *RelationTypes) AddComponent(id types.RelationTypeID, component types.ComponentTypeID) error {
	return addComponent(r.registry, id, component)
}

// RemoveComponent drops the reference to component.
func (r *RelationTypes) RemoveComponent(id types.RelationTypeID, component types.ComponentTypeID) error {
	return removeComponent(r.registry, id, component)
}

// FlowTypes is the flow type registry. The property mutators act on the flow
// variables.
type FlowTypes struct {
	*registry[types.FlowTypeTag, *types.FlowType]
}

// AddVariable adds a variable to flow type id.
func (r *FlowTypes) AddVariable(id types.FlowTypeID, variable types.PropertyType) (types.PropertyType, error) {
	return r.AddProperty(id, variable)
}

// UpdateVariable replaces or renames a variable of flow type id.
func (r *FlowTypes) UpdateVariable(id types.FlowTypeID, name string, variable types.PropertyType) (types.PropertyType, error) {
	return r.UpdateProperty(id, name, variable)
}

// RemoveVariable removes a variable of flow type id.
func (r *FlowTypes) RemoveVariable(id types.FlowTypeID, name string) (types.PropertyType, error) {
	return r.RemoveProperty(id, name)
}

// TypeSystem aggregates the four registries.
type TypeSystem struct {
	logger    *slog.Logger
	observers []Observer

	components    *Components
	entityTypes   *EntityTypes
	relationTypes *RelationTypes
	flowTypes     *FlowTypes
}

// Option configures a TypeSystem.
type Option func(*TypeSystem)

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(ts *TypeSystem) {
		ts.logger = l
	}
}

// WithObserver registers an observer for every mutation.
func WithObserver(o Observer) Option {
	return func(ts *TypeSystem) {
		ts.observers = append(ts.observers, o)
	}
}

// New returns an empty type system.
func New(opts ...Option) *TypeSystem {
	ts := &TypeSystem{logger: slog.Default()}
	for _, opt := range opts {
		opt(ts)
	}
	ts.components = &Components{newRegistry[types.ComponentTag, *types.Component](ts.emit)}
	ts.entityTypes = &EntityTypes{newRegistry[types.EntityTypeTag, *types.EntityType](ts.emit)}
	ts.relationTypes = &RelationTypes{newRegistry[types.RelationTypeTag, *types.RelationType](ts.emit)}
	ts.flowTypes = &FlowTypes{newRegistry[types.FlowTypeTag, *types.FlowType](ts.emit)}
	return ts
}

func (ts *TypeSystem) emit(ev Event) {
	attrs := []any{"op", ev.Op, "type", ev.Type.String()}
	switch {
	case ev.Property != "":
		attrs = append(attrs, "property", ev.Property)
	case !ev.Extension.IsZero():
		attrs = append(attrs, "extension", ev.Extension.String())
	case !ev.Component.IsZero():
		attrs = append(attrs, "component", ev.Component.String())
	}
	if ev.OldName != "" {
		attrs = append(attrs, "old_name", ev.OldName)
	}
	ts.logger.Debug("type system changed", attrs...)
	for _, o := range ts.observers {
		o.OnEvent(ev)
	}
}

// Components returns the component registry.
func (ts *TypeSystem) Components() *Components { return ts.components }

// EntityTypes returns the entity type registry.
func (ts *TypeSystem) EntityTypes() *EntityTypes { return ts.entityTypes }

// RelationTypes returns the relation type registry.
func (ts *TypeSystem) RelationTypes() *RelationTypes { return ts.relationTypes }

// FlowTypes returns the flow type registry.
func (ts *TypeSystem) FlowTypes() *FlowTypes { return ts.flowTypes }

// MergeComponentProperties copies the properties and extensions of each given
// component into every entity type and relation type that references it.
// Properties and extensions the type already defines are kept. Re-running
// without intervening changes adds nothing. Returns the number of properties
// and extensions added.
//
// Merging is never triggered implicitly: it must be re-run after a component
// gains properties or a type gains a component reference.
func (ts *TypeSystem) MergeComponentProperties(components ...*types.Component) int {
	byID := make(map[types.ComponentTypeID]*types.Component, len(components))
	for _, c := range components {
		byID[c.Type] = c
	}
	entityAdded, entityErr := mergeComponents(ts.entityTypes.registry, byID)
	relationAdded, relationErr := mergeComponents(ts.relationTypes.registry, byID)
	added := entityAdded + relationAdded
	if err := errors.Join(entityErr, relationErr); err != nil {
		ts.logger.Warn("merge component properties", "error", err)
	}
	if added > 0 {
		ts.logger.Debug("merged component properties", "components", len(components), "added", added)
	}
	return added
}

// MergeAllComponentProperties merges every registered component.
func (ts *TypeSystem) MergeAllComponentProperties() int {
	return ts.MergeComponentProperties(ts.components.GetAll()...)
}

// OutboundRelationTypes returns the relation types whose outbound endpoint
// accepts instances of entityType, directly, through one of its components or
// by wildcard.
func (ts *TypeSystem) OutboundRelationTypes(entityType types.EntityTypeID) ([]*types.RelationType, error) {
	return ts.relationTypesMatching(entityType, (*types.RelationType).AcceptsOutbound)
}

// InboundRelationTypes returns the relation types whose inbound endpoint
// accepts instances of entityType.
func (ts *TypeSystem) InboundRelationTypes(entityType types.EntityTypeID) ([]*types.RelationType, error) {
	return ts.relationTypesMatching(entityType, (*types.RelationType).AcceptsInbound)
}

func (ts *TypeSystem) relationTypesMatching(
	entityType types.EntityTypeID,
	accepts func(*types.RelationType, types.EntityTypeID, []types.ComponentTypeID) bool,
) ([]*types.RelationType, error) {
	et, ok := ts.entityTypes.Get(entityType)
	if !ok {
		return nil, &Error{Op: "relation_types", Type: entityType.TypeDefinition(), Err: ErrTypeDoesNotExist}
	}
	components := et.Components.ToSlice()
	var out []*types.RelationType
	for _, rt := range ts.relationTypes.GetAll() {
		if accepts(rt, entityType, components) {
			out = append(out, rt)
		}
	}
	return out, nil
}
