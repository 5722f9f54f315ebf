package typesystem

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// definition is satisfied by *types.Component, *types.EntityType,
// *types.RelationType and *types.FlowType.
type definition[K types.KindMarker, T any] interface {
	TypeID() types.TypeID[K]
	TypeDefinition() types.TypeDefinition
	PropertySet() *types.PropertyTypes
	ExtensionSet() *types.Extensions
	Clone() T
}

// composite is a definition that references components.
type composite interface {
	TypeDefinition() types.TypeDefinition
	ComponentSet() *types.ComponentTypeIDs
	PropertySet() *types.PropertyTypes
	ExtensionSet() *types.Extensions
}

// registry holds at most one value per type id. Values are stored as private
// copies: Register and Replace clone their argument and reads return clones,
// so a value obtained from the registry is never partially mutated.
type registry[K types.KindMarker, T definition[K, T]] struct {
	mu    sync.RWMutex
	items map[types.TypeID[K]]T
	emit  func(Event)
}

func newRegistry[K types.KindMarker, T definition[K, T]](emit func(Event)) *registry[K, T] {
	return &registry[K, T]{items: make(map[types.TypeID[K]]T), emit: emit}
}

func (r *registry[K, T]) notify(events ...Event) {
	if r.emit == nil {
		return
	}
	for _, ev := range events {
		r.emit(ev)
	}
}

// validator is implemented by definitions with constraints beyond their
// properties, such as relation endpoints.
type validator interface {
	Validate() error
}

func validateDefinition[K types.KindMarker, T definition[K, T]](op string, v T) error {
	if v.TypeID().IsZero() {
		return &Error{Op: op, Err: types.ErrInvalidTypeID}
	}
	if val, ok := any(v).(validator); ok {
		if err := val.Validate(); err != nil {
			return &Error{Op: op, Type: v.TypeDefinition(), Err: err}
		}
	}
	for _, p := range v.PropertySet().ToSlice() {
		if err := p.Validate(); err != nil {
			return &Error{Op: op, Type: v.TypeDefinition(), Name: p.Name, Err: err}
		}
	}
	return nil
}

// Register stores v. Returns ErrTypeAlreadyExists if its type id is taken;
// the stored value is left unchanged.
func (r *registry[K, T]) Register(v T) (T, error) {
	var zero T
	if err := validateDefinition[K](opRegister, v); err != nil {
		return zero, err
	}
	id := v.TypeID()
	r.mu.Lock()
	if _, ok := r.items[id]; ok {
		r.mu.Unlock()
		return zero, &Error{Op: opRegister, Type: id.TypeDefinition(), Err: ErrTypeAlreadyExists}
	}
	r.items[id] = v.Clone()
	r.mu.Unlock()
	r.notify(Event{Op: OpTypeCreated, Type: id.TypeDefinition()})
	return v, nil
}

// Get returns a copy of the value registered under id.
func (r *registry[K, T]) Get(id types.TypeID[K]) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return v.Clone(), true
}

// Has reports whether id is registered.
func (r *registry[K, T]) Has(id types.TypeID[K]) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

// Count returns the number of registered values.
func (r *registry[K, T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// GetAll returns copies of every value sorted by type id. Each entry is
// internally consistent; the slice is not a snapshot across entries.
func (r *registry[K, T]) GetAll() []T {
	r.mu.RLock()
	out := make([]T, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, v.Clone())
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b T) int { return a.TypeID().Compare(b.TypeID()) })
	return out
}

// GetIDs returns the registered type ids, sorted.
func (r *registry[K, T]) GetIDs() []types.TypeID[K] {
	r.mu.RLock()
	out := make([]types.TypeID[K], 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b types.TypeID[K]) int { return a.Compare(b) })
	return out
}

// GetByNamespace returns the values whose namespace equals ns.
func (r *registry[K, T]) GetByNamespace(ns types.Namespace) []T {
	all := r.GetAll()
	out := all[:0]
	for _, v := range all {
		if v.TypeID().Namespace() == ns {
			out = append(out, v)
		}
	}
	return out
}

// Namespaces returns the distinct namespaces in use, sorted.
func (r *registry[K, T]) Namespaces() []types.Namespace {
	seen := make(map[types.Namespace]struct{})
	var out []types.Namespace
	for _, id := range r.GetIDs() {
		ns := id.Namespace()
		if _, ok := seen[ns]; ok {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out
}

// Find returns the values whose "namespace::Name" matches the glob pattern,
// e.g. "demo::*" or "*::Counter".
func (r *registry[K, T]) Find(pattern string) ([]T, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("typesystem: find %q: %w", pattern, err)
	}
	var out []T
	for _, v := range r.GetAll() {
		if ok, _ := path.Match(pattern, v.TypeID().NamespacedType().String()); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Delete removes and returns the value registered under id.
func (r *registry[K, T]) Delete(id types.TypeID[K]) (T, bool) {
	r.mu.Lock()
	v, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	r.mu.Unlock()
	if ok {
		r.notify(Event{Op: OpTypeDeleted, Type: id.TypeDefinition()})
	}
	return v, ok
}

// Replace unconditionally stores v in place of id. When v carries a different
// type id the old entry is removed, which is how types are renamed.
func (r *registry[K, T]) Replace(id types.TypeID[K], v T) error {
	if err := validateDefinition[K](opReplace, v); err != nil {
		return err
	}
	newID := v.TypeID()
	r.mu.Lock()
	delete(r.items, id)
	r.items[newID] = v.Clone()
	r.mu.Unlock()

	ev := Event{Op: OpTypeUpdated, Type: newID.TypeDefinition()}
	if newID != id {
		ev.OldName = id.String()
	}
	r.notify(ev)
	return nil
}

// update runs fn on the stored value of id under the write lock. fn must
// leave the value unchanged when it returns an error.
func (r *registry[K, T]) update(op string, id types.TypeID[K], fn func(T) ([]Event, error)) error {
	r.mu.Lock()
	v, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return &Error{Op: op, Type: id.TypeDefinition(), Err: ErrTypeDoesNotExist}
	}
	events, err := fn(v)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.notify(events...)
	return nil
}

// AddProperty adds prop to the type id.
func (r *registry[K, T]) AddProperty(id types.TypeID[K], prop types.PropertyType) (types.PropertyType, error) {
	def := id.TypeDefinition()
	if err := prop.Validate(); err != nil {
		return types.PropertyType{}, &Error{Op: opAddProperty, Type: def, Name: prop.Name, Err: err}
	}
	err := r.update(opAddProperty, id, func(v T) ([]Event, error) {
		if err := v.PropertySet().Add(prop); err != nil {
			return nil, &Error{Op: opAddProperty, Type: def, Name: prop.Name, Err: err}
		}
		return []Event{{Op: OpPropertyAdded, Type: def, Property: prop.Name}}, nil
	})
	if err != nil {
		return types.PropertyType{}, err
	}
	return prop, nil
}

// UpdateProperty replaces the property name of type id with prop and returns
// the previous definition. A differing prop.Name renames the property.
func (r *registry[K, T]) UpdateProperty(id types.TypeID[K], name string, prop types.PropertyType) (types.PropertyType, error) {
	def := id.TypeDefinition()
	if err := prop.Validate(); err != nil {
		return types.PropertyType{}, &Error{Op: opUpdateProperty, Type: def, Name: name, Err: err}
	}
	var old types.PropertyType
	err := r.update(opUpdateProperty, id, func(v T) ([]Event, error) {
		var err error
		old, err = v.PropertySet().Update(name, prop)
		if err != nil {
			return nil, &Error{Op: opUpdateProperty, Type: def, Name: name, Err: err}
		}
		if prop.Name != name {
			return []Event{{Op: OpPropertyRenamed, Type: def, Property: prop.Name, OldName: name}}, nil
		}
		return []Event{{Op: OpPropertyUpdated, Type: def, Property: name}}, nil
	})
	if err != nil {
		return types.PropertyType{}, err
	}
	return old, nil
}

// RemoveProperty removes and returns the property name of type id.
func (r *registry[K, T]) RemoveProperty(id types.TypeID[K], name string) (types.PropertyType, error) {
	def := id.TypeDefinition()
	var removed types.PropertyType
	err := r.update(opRemoveProperty, id, func(v T) ([]Event, error) {
		var err error
		removed, err = v.PropertySet().Remove(name)
		if err != nil {
			return nil, &Error{Op: opRemoveProperty, Type: def, Name: name, Err: err}
		}
		return []Event{{Op: OpPropertyRemoved, Type: def, Property: name}}, nil
	})
	return removed, err
}

// AddExtension adds ext to the type id.
func (r *registry[K, T]) AddExtension(id types.TypeID[K], ext types.Extension) (types.Extension, error) {
	def := id.TypeDefinition()
	err := r.update(opAddExtension, id, func(v T) ([]Event, error) {
		if err := v.ExtensionSet().Add(ext); err != nil {
			return nil, &Error{Op: opAddExtension, Type: def, Name: ext.Type.String(), Err: err}
		}
		return []Event{{Op: OpExtensionAdded, Type: def, Extension: ext.Type}}, nil
	})
	if err != nil {
		return types.Extension{}, err
	}
	return ext, nil
}

// UpdateExtension replaces the extension extTy of type id with ext and
// returns the previous one. A differing ext.Type renames the extension.
func (r *registry[K, T]) UpdateExtension(id types.TypeID[K], extTy types.ExtensionTypeID, ext types.Extension) (types.Extension, error) {
	def := id.TypeDefinition()
	var old types.Extension
	err := r.update(opUpdateExtension, id, func(v T) ([]Event, error) {
		var err error
		old, err = v.ExtensionSet().Update(extTy, ext)
		if err != nil {
			return nil, &Error{Op: opUpdateExtension, Type: def, Name: extTy.String(), Err: err}
		}
		if ext.Type != extTy {
			return []Event{{Op: OpExtensionRenamed, Type: def, Extension: ext.Type, OldExtension: extTy}}, nil
		}
		return []Event{{Op: OpExtensionUpdated, Type: def, Extension: extTy}}, nil
	})
	if err != nil {
		return types.Extension{}, err
	}
	return old, nil
}

// RemoveExtension removes and returns the extension extTy of type id.
func (r *registry[K, T]) RemoveExtension(id types.TypeID[K], extTy types.ExtensionTypeID) (types.Extension, error) {
	def := id.TypeDefinition()
	var removed types.Extension
	err := r.update(opRemoveExtension, id, func(v T) ([]Event, error) {
		var err error
		removed, err = v.ExtensionSet().Remove(extTy)
		if err != nil {
			return nil, &Error{Op: opRemoveExtension, Type: def, Name: extTy.String(), Err: err}
		}
		return []Event{{Op: OpExtensionRemoved, Type: def, Extension: extTy}}, nil
	})
	return removed, err
}

// addComponent and removeComponent change membership only; merging the
// component's properties is a separate step.
func addComponent[K types.KindMarker, T interface {
	definition[K, T]
	composite
}](r *registry[K, T], id types.TypeID[K], component types.ComponentTypeID) error {
	def := id.TypeDefinition()
	return r.update(opAddComponent, id, func(v T) ([]Event, error) {
		if !v.ComponentSet().Insert(component) {
			return nil, nil
		}
		return []Event{{Op: OpComponentAdded, Type: def, Component: component}}, nil
	})
}

func removeComponent[K types.KindMarker, T interface {
	definition[K, T]
	composite
}](r *registry[K, T], id types.TypeID[K], component types.ComponentTypeID) error {
	def := id.TypeDefinition()
	return r.update(opRemoveComponent, id, func(v T) ([]Event, error) {
		if !v.ComponentSet().Remove(component) {
			return nil, &Error{Op: opRemoveComponent, Type: def, Name: component.String(), Err: ErrComponentNotFound}
		}
		return []Event{{Op: OpComponentRemoved, Type: def, Component: component}}, nil
	})
}

// mergeComponents copies the properties and extensions of every component in
// byID that a stored type references, never overwriting what the type already
// defines. Returns the number of added properties and extensions. A type
// deleted while the merge runs is skipped; any other failure is returned.
func mergeComponents[K types.KindMarker, T interface {
	definition[K, T]
	composite
}](r *registry[K, T], byID map[types.ComponentTypeID]*types.Component) (int, error) {
	added := 0
	var errs []error
	for _, id := range r.GetIDs() {
		def := id.TypeDefinition()
		err := r.update(opMerge, id, func(v T) ([]Event, error) {
			var events []Event
			for _, cid := range v.ComponentSet().ToSlice() {
				c, ok := byID[cid]
				if !ok {
					continue
				}
				for _, p := range v.PropertySet().Merge(c.Properties.ToSlice()...) {
					events = append(events, Event{Op: OpPropertyAdded, Type: def, Property: p.Name})
				}
				for _, ext := range v.ExtensionSet().Merge(c.Extensions.ToSlice()...) {
					events = append(events, Event{Op: OpExtensionAdded, Type: def, Extension: ext.Type})
				}
			}
			added += len(events)
			return events, nil
		})
		if err != nil && !errors.Is(err, ErrTypeDoesNotExist) {
			errs = append(errs, err)
		}
	}
	return added, errors.Join(errs...)
}

const (
	opRegister        = "register"
	opReplace         = "replace"
	opAddProperty     = "add_property"
	opUpdateProperty  = "update_property"
	opRemoveProperty  = "remove_property"
	opAddExtension    = "add_extension"
	opUpdateExtension = "update_extension"
	opRemoveExtension = "remove_extension"
	opAddComponent    = "add_component"
	opRemoveComponent = "remove_component"
	opMerge           = "merge_component_properties"
)
