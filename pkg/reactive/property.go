package reactive

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// Subscriber receives values propagated by a Property.
type Subscriber func(value any)

type subscription struct {
	handle uint64
	fn     Subscriber
}

// Property is an observable value cell owned by one entity or relation.
//
// Writers and propagation are serialized per property: subscribers see values
// in the order Set, Send and Tick were called, and a subscriber that blocks
// stalls only this property. Subscribers run synchronously on the writer's
// goroutine and must not write to the property that is notifying them.
type Property struct {
	ownerID    uuid.UUID
	name       string
	mutability types.Mutability

	emitMu sync.Mutex

	valueMu sync.RWMutex
	value   any

	subsMu sync.Mutex
	subs   []subscription
}

// NewProperty returns a property holding value.
func NewProperty(ownerID uuid.UUID, name string, mutability types.Mutability, value any) *Property {
	if mutability == "" {
		mutability = types.Mutable
	}
	return &Property{ownerID: ownerID, name: name, mutability: mutability, value: value}
}

// OwnerID returns the id of the owning instance.
func (p *Property) OwnerID() uuid.UUID { return p.ownerID }

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Mutability returns whether checked setters may change the value.
func (p *Property) Mutability() types.Mutability { return p.mutability }

// Get returns the last written value.
func (p *Property) Get() any {
	p.valueMu.RLock()
	defer p.valueMu.RUnlock()
	return p.value
}

// Set stores value and propagates it to every subscriber.
func (p *Property) Set(value any) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.store(value)
	p.propagate(value)
}

// SetNoPropagate stores value without notifying subscribers.
func (p *Property) SetNoPropagate(value any) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.store(value)
}

// SetChecked is Set, silently ignored when the property is immutable.
func (p *Property) SetChecked(value any) {
	if p.mutability == types.Immutable {
		return
	}
	p.Set(value)
}

// SetNoPropagateChecked is SetNoPropagate, silently ignored when the property
// is immutable.
func (p *Property) SetNoPropagateChecked(value any) {
	if p.mutability == types.Immutable {
		return
	}
	p.SetNoPropagate(value)
}

// Send propagates value without storing it.
func (p *Property) Send(value any) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.propagate(value)
}

// Tick propagates the stored value again.
func (p *Property) Tick() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.propagate(p.Get())
}

// TickChecked is Tick, silently ignored when the property is immutable.
func (p *Property) TickChecked() {
	if p.mutability == types.Immutable {
		return
	}
	p.Tick()
}

// ObserveWithHandle registers fn under handle. Registering an existing handle
// replaces its subscriber and keeps its position.
func (p *Property) ObserveWithHandle(fn Subscriber, handle uint64) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for i := range p.subs {
		if p.subs[i].handle == handle {
			p.subs[i].fn = fn
			return
		}
	}
	p.subs = append(p.subs, subscription{handle: handle, fn: fn})
}

// RemoveObserver unregisters handle and reports whether it was registered.
func (p *Property) RemoveObserver(handle uint64) bool {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for i := range p.subs {
		if p.subs[i].handle == handle {
			p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveObservers unregisters every subscriber.
func (p *Property) RemoveObservers() {
	p.subsMu.Lock()
	p.subs = nil
	p.subsMu.Unlock()
}

// ObserverCount returns the number of subscribers.
func (p *Property) ObserverCount() int {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	return len(p.subs)
}

func (p *Property) store(value any) {
	p.valueMu.Lock()
	p.value = value
	p.valueMu.Unlock()
}

// propagate calls the subscribers registered at the time of the call, in
// registration order. The caller holds emitMu.
func (p *Property) propagate(value any) {
	p.subsMu.Lock()
	subs := make([]subscription, len(p.subs))
	copy(subs, p.subs)
	p.subsMu.Unlock()
	for _, s := range subs {
		s.fn(value)
	}
}
