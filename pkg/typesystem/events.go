package typesystem

import "github.com/mesh-intelligence/lattice/pkg/types"

// Op names a type system mutation.
type Op string

// Mutations reported to observers.
const (
	OpTypeCreated      Op = "type_created"
	OpTypeUpdated      Op = "type_updated"
	OpTypeDeleted      Op = "type_deleted"
	OpComponentAdded   Op = "component_added"
	OpComponentRemoved Op = "component_removed"
	OpPropertyAdded    Op = "property_added"
	OpPropertyUpdated  Op = "property_updated"
	OpPropertyRenamed  Op = "property_renamed"
	OpPropertyRemoved  Op = "property_removed"
	OpExtensionAdded   Op = "extension_added"
	OpExtensionUpdated Op = "extension_updated"
	OpExtensionRenamed Op = "extension_renamed"
	OpExtensionRemoved Op = "extension_removed"
)

// Event describes one successful mutation. Only the fields relevant to Op are
// set: Component for component ops, Property and OldName for property ops,
// Extension and OldExtension for extension ops. OldName also carries the
// previous canonical id when a type is replaced under a new id.
type Event struct {
	Op           Op
	Type         types.TypeDefinition
	Component    types.ComponentTypeID
	Property     string
	OldName      string
	Extension    types.ExtensionTypeID
	OldExtension types.ExtensionTypeID
}

// Observer is informed of every successful mutation, synchronously and after
// the mutation is visible. Rejected mutations produce no event.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) {
	f(ev)
}
