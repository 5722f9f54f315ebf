// Package types defines the type model of the lattice: namespaces, the five
// kinds of type ids and their canonical string form, id sets, property types,
// extensions, components, entity, relation and flow types, and the relation
// endpoint constraints.
//
// Everything here is a value or a self-locking container. Registries that own
// these values live in package typesystem; runtime instances live in package
// reactive.
package types
