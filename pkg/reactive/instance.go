package reactive

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// instance is the state shared by entities and relations: the property cells
// and the component and behaviour memberships. Each part locks itself.
type instance struct {
	ownerID uuid.UUID

	descMu      sync.RWMutex
	description string

	properties Properties
	components types.ComponentTypeIDs
	behaviours types.BehaviourTypeIDs
	extensions types.Extensions
}

func (in *instance) init(ownerID uuid.UUID, description string) {
	in.ownerID = ownerID
	in.description = description
}

// Description returns the instance description.
func (in *instance) Description() string {
	in.descMu.RLock()
	defer in.descMu.RUnlock()
	return in.description
}

// SetDescription replaces the instance description.
func (in *instance) SetDescription(description string) {
	in.descMu.Lock()
	in.description = description
	in.descMu.Unlock()
}

// Property returns the cell called name.
func (in *instance) Property(name string) (*Property, bool) {
	return in.properties.Get(name)
}

func (in *instance) mustProperty(name string) (*Property, error) {
	p, ok := in.properties.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPropertyDoesNotExist, name)
	}
	return p, nil
}

// Get returns the value of property name.
func (in *instance) Get(name string) (any, bool) {
	p, ok := in.properties.Get(name)
	if !ok {
		return nil, false
	}
	return p.Get(), true
}

// Set stores value in property name and propagates it.
func (in *instance) Set(name string, value any) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.Set(value)
	return nil
}

// SetNoPropagate stores value in property name without propagating it.
func (in *instance) SetNoPropagate(name string, value any) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.SetNoPropagate(value)
	return nil
}

// SetChecked is Set, silently ignored for immutable properties.
func (in *instance) SetChecked(name string, value any) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.SetChecked(value)
	return nil
}

// SetNoPropagateChecked is SetNoPropagate, silently ignored for immutable
// properties.
func (in *instance) SetNoPropagateChecked(name string, value any) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.SetNoPropagateChecked(value)
	return nil
}

// Send propagates value on property name without storing it.
func (in *instance) Send(name string, value any) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.Send(value)
	return nil
}

// Tick propagates the stored value of property name again.
func (in *instance) Tick(name string) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.Tick()
	return nil
}

// TickChecked is Tick, silently ignored for immutable properties.
func (in *instance) TickChecked(name string) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.TickChecked()
	return nil
}

// TickAll ticks every property in name order.
func (in *instance) TickAll() {
	for _, p := range in.properties.All() {
		p.Tick()
	}
}

// Observe registers fn on property name under handle.
func (in *instance) Observe(name string, handle uint64, fn Subscriber) error {
	p, err := in.mustProperty(name)
	if err != nil {
		return err
	}
	p.ObserveWithHandle(fn, handle)
	return nil
}

// RemoveObserver unregisters handle from property name.
func (in *instance) RemoveObserver(name string, handle uint64) bool {
	p, ok := in.properties.Get(name)
	return ok && p.RemoveObserver(handle)
}

// RemoveAllObservers unregisters every subscriber of every property.
func (in *instance) RemoveAllObservers() {
	for _, p := range in.properties.All() {
		p.RemoveObservers()
	}
}

// AddProperty adds a cell unless one called name exists. The existing cell
// and its value are kept; the return value reports whether a cell was added.
func (in *instance) AddProperty(name string, mutability types.Mutability, value any) bool {
	if in.properties.Has(name) {
		return false
	}
	return in.properties.Add(NewProperty(in.ownerID, name, mutability, value))
}

// AddPropertyByType adds a cell for pt holding its default value unless one
// with that name exists.
func (in *instance) AddPropertyByType(pt types.PropertyType) bool {
	return in.AddProperty(pt.Name, pt.EffectiveMutability(), pt.DefaultValue())
}

// RemoveProperty removes the cell called name. Subscribers of the removed
// cell are not notified or unregistered.
func (in *instance) RemoveProperty(name string) bool {
	_, ok := in.properties.Remove(name)
	return ok
}

// HasProperty reports whether a cell called name exists.
func (in *instance) HasProperty(name string) bool {
	return in.properties.Has(name)
}

// PropertyNames returns the property names, sorted.
func (in *instance) PropertyNames() []string {
	return in.properties.Names()
}

// Properties returns a snapshot of every property value.
func (in *instance) Properties() map[string]any {
	return in.properties.Values()
}

// AddComponent records membership of component.
func (in *instance) AddComponent(component types.ComponentTypeID) bool {
	return in.components.Insert(component)
}

// AddComponentWithProperties records membership of c and adds a cell for
// each of its properties that the instance does not have yet.
func (in *instance) AddComponentWithProperties(c *types.Component) {
	in.components.Insert(c.Type)
	for _, pt := range c.Properties.ToSlice() {
		in.AddPropertyByType(pt)
	}
}

// RemoveComponent drops membership of component. Properties it contributed
// stay.
func (in *instance) RemoveComponent(component types.ComponentTypeID) bool {
	return in.components.Remove(component)
}

// IsA reports whether the instance carries component.
func (in *instance) IsA(component types.ComponentTypeID) bool {
	return in.components.Contains(component)
}

// Components returns the component memberships, sorted.
func (in *instance) Components() []types.ComponentTypeID {
	return in.components.ToSlice()
}

// AddBehaviour records that the instance behaves as behaviour.
func (in *instance) AddBehaviour(behaviour types.BehaviourTypeID) bool {
	return in.behaviours.Insert(behaviour)
}

// RemoveBehaviour drops behaviour.
func (in *instance) RemoveBehaviour(behaviour types.BehaviourTypeID) bool {
	return in.behaviours.Remove(behaviour)
}

// BehavesAs reports whether behaviour is attached.
func (in *instance) BehavesAs(behaviour types.BehaviourTypeID) bool {
	return in.behaviours.Contains(behaviour)
}

// Behaviours returns the attached behaviours, sorted.
func (in *instance) Behaviours() []types.BehaviourTypeID {
	return in.behaviours.ToSlice()
}

// AddExtension attaches ext to the instance.
func (in *instance) AddExtension(ext types.Extension) error {
	return in.extensions.Add(ext)
}

// RemoveExtension detaches the extension of type ty.
func (in *instance) RemoveExtension(ty types.ExtensionTypeID) (types.Extension, error) {
	return in.extensions.Remove(ty)
}

// Extensions returns the instance extensions sorted by type.
func (in *instance) Extensions() []types.Extension {
	return in.extensions.ToSlice()
}
