package reactive

import (
	"slices"
	"strings"
	"sync"
)

// Properties maps names to property cells. The map lock only guards
// membership; each cell locks itself, so writes to different properties
// never block each other. The zero value is empty and ready to use.
type Properties struct {
	mu    sync.RWMutex
	props map[string]*Property
}

// Add inserts p unless a property of the same name exists and reports
// whether it was inserted.
func (ps *Properties) Add(p *Property) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.props == nil {
		ps.props = make(map[string]*Property)
	}
	if _, ok := ps.props[p.Name()]; ok {
		return false
	}
	ps.props[p.Name()] = p
	return true
}

// Get returns the property called name.
func (ps *Properties) Get(name string) (*Property, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.props[name]
	return p, ok
}

// Has reports whether a property called name exists.
func (ps *Properties) Has(name string) bool {
	_, ok := ps.Get(name)
	return ok
}

// Remove deletes the property called name and returns it. Its subscribers are
// left registered.
func (ps *Properties) Remove(name string) (*Property, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.props[name]
	if ok {
		delete(ps.props, name)
	}
	return p, ok
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.props)
}

// Names returns the property names, sorted.
func (ps *Properties) Names() []string {
	ps.mu.RLock()
	names := make([]string, 0, len(ps.props))
	for name := range ps.props {
		names = append(names, name)
	}
	ps.mu.RUnlock()
	slices.Sort(names)
	return names
}

// All returns the properties sorted by name.
func (ps *Properties) All() []*Property {
	ps.mu.RLock()
	out := make([]*Property, 0, len(ps.props))
	for _, p := range ps.props {
		out = append(out, p)
	}
	ps.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Property) int { return strings.Compare(a.name, b.name) })
	return out
}

// Values returns a snapshot of every property value.
func (ps *Properties) Values() map[string]any {
	all := ps.All()
	out := make(map[string]any, len(all))
	for _, p := range all {
		out[p.Name()] = p.Get()
	}
	return out
}
