package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// FlowType is a template for a flow: a wrapper entity instance plus the
// entity and relation instances it contains, and the variables that
// parameterise it. Its id is the wrapper entity's id.
type FlowType struct {
	Type        FlowTypeID
	Description string
	Wrapper     EntityInstance
	Variables   PropertyTypes
	Extensions  Extensions

	mu        sync.RWMutex
	entities  map[uuid.UUID]EntityInstance
	relations map[RelationInstanceID]RelationInstance
}

// NewFlowType returns a flow type wrapped by wrapper. The wrapper is also
// one of the flow's entity instances.
func NewFlowType(ty FlowTypeID, description string, wrapper EntityInstance) *FlowType {
	f := &FlowType{Type: ty, Description: description, Wrapper: wrapper}
	f.entities = map[uuid.UUID]EntityInstance{wrapper.ID: wrapper.Clone()}
	return f
}

// ID returns the wrapper entity instance id.
func (f *FlowType) ID() uuid.UUID {
	return f.Wrapper.ID
}

func (f *FlowType) TypeID() FlowTypeID             { return f.Type }
func (f *FlowType) TypeDefinition() TypeDefinition { return f.Type.TypeDefinition() }

// PropertySet returns the flow variables.
func (f *FlowType) PropertySet() *PropertyTypes { return &f.Variables }

// ExtensionSet returns the live extension set.
func (f *FlowType) ExtensionSet() *Extensions { return &f.Extensions }

// AddEntityInstance adds inst. Returns ErrEntityInstanceAlreadyExists if its
// id is taken.
func (f *FlowType) AddEntityInstance(inst EntityInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entities == nil {
		f.entities = make(map[uuid.UUID]EntityInstance)
	}
	if _, ok := f.entities[inst.ID]; ok {
		return fmt.Errorf("%w: %s", ErrEntityInstanceAlreadyExists, inst.ID)
	}
	f.entities[inst.ID] = inst.Clone()
	return nil
}

// RemoveEntityInstance removes the entity instance with id and every relation
// instance attached to it.
func (f *FlowType) RemoveEntityInstance(id uuid.UUID) (EntityInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.entities[id]
	if !ok {
		return EntityInstance{}, fmt.Errorf("%w: %s", ErrEntityInstanceDoesNotExist, id)
	}
	delete(f.entities, id)
	for rid := range f.relations {
		if rid.OutboundID == id || rid.InboundID == id {
			delete(f.relations, rid)
		}
	}
	return inst, nil
}

// EntityInstance returns a copy of the entity instance with id.
func (f *FlowType) EntityInstance(id uuid.UUID) (EntityInstance, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	inst, ok := f.entities[id]
	if !ok {
		return EntityInstance{}, false
	}
	return inst.Clone(), true
}

// HasEntityInstance reports whether the flow contains id.
func (f *FlowType) HasEntityInstance(id uuid.UUID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entities[id]
	return ok
}

// EntityInstances returns the entity instances sorted by id.
func (f *FlowType) EntityInstances() []EntityInstance {
	f.mu.RLock()
	out := make([]EntityInstance, 0, len(f.entities))
	for _, inst := range f.entities {
		out = append(out, inst.Clone())
	}
	f.mu.RUnlock()
	slices.SortFunc(out, func(a, b EntityInstance) int { return compareUUID(a.ID, b.ID) })
	return out
}

// AddRelationInstance adds rel. Both ends must already be entity instances of
// the flow.
func (f *FlowType) AddRelationInstance(rel RelationInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, end := range []uuid.UUID{rel.OutboundID, rel.InboundID} {
		if _, ok := f.entities[end]; !ok {
			return fmt.Errorf("%w: %s", ErrEntityInstanceDoesNotExist, end)
		}
	}
	if f.relations == nil {
		f.relations = make(map[RelationInstanceID]RelationInstance)
	}
	if _, ok := f.relations[rel.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrRelationInstanceAlreadyExists, rel.ID())
	}
	f.relations[rel.ID()] = rel.Clone()
	return nil
}

// RemoveRelationInstance removes the relation instance with id.
func (f *FlowType) RemoveRelationInstance(id RelationInstanceID) (RelationInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rel, ok := f.relations[id]
	if !ok {
		return RelationInstance{}, fmt.Errorf("%w: %s", ErrRelationInstanceDoesNotExist, id)
	}
	delete(f.relations, id)
	return rel, nil
}

// HasRelationInstance reports whether the flow contains id.
func (f *FlowType) HasRelationInstance(id RelationInstanceID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.relations[id]
	return ok
}

// RelationInstances returns the relation instances sorted by id.
func (f *FlowType) RelationInstances() []RelationInstance {
	f.mu.RLock()
	out := make([]RelationInstance, 0, len(f.relations))
	for _, rel := range f.relations {
		out = append(out, rel.Clone())
	}
	f.mu.RUnlock()
	slices.SortFunc(out, func(a, b RelationInstance) int { return a.ID().Compare(b.ID()) })
	return out
}

// Clone returns a deep copy.
func (f *FlowType) Clone() *FlowType {
	out := &FlowType{Type: f.Type, Description: f.Description, Wrapper: f.Wrapper.Clone()}
	out.Variables.ReplaceAll(f.Variables.ToSlice()...)
	out.Extensions.ReplaceAll(f.Extensions.ToSlice()...)
	out.entities = make(map[uuid.UUID]EntityInstance)
	for _, inst := range f.EntityInstances() {
		out.entities[inst.ID] = inst
	}
	out.relations = make(map[RelationInstanceID]RelationInstance)
	for _, rel := range f.RelationInstances() {
		out.relations[rel.ID()] = rel
	}
	return out
}

type flowTypeRecord struct {
	Type              FlowTypeID         `json:"type"`
	Description       string             `json:"description,omitempty"`
	Wrapper           EntityInstance     `json:"wrapper_entity_instance"`
	EntityInstances   []EntityInstance   `json:"entity_instances"`
	RelationInstances []RelationInstance `json:"relation_instances"`
	Variables         []PropertyType     `json:"variables"`
	Extensions        []Extension        `json:"extensions"`
}

// MarshalJSON encodes the flow with its instances sorted by id.
func (f *FlowType) MarshalJSON() ([]byte, error) {
	return json.Marshal(flowTypeRecord{
		Type:              f.Type,
		Description:       f.Description,
		Wrapper:           f.Wrapper,
		EntityInstances:   f.EntityInstances(),
		RelationInstances: f.RelationInstances(),
		Variables:         f.Variables.ToSlice(),
		Extensions:        f.Extensions.ToSlice(),
	})
}

// UnmarshalJSON decodes a flow. The wrapper is added to the entity instances
// if the record omits it.
func (f *FlowType) UnmarshalJSON(data []byte) error {
	var rec flowTypeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	f.Type = rec.Type
	f.Description = rec.Description
	f.Wrapper = rec.Wrapper
	f.Variables.ReplaceAll(rec.Variables...)
	f.Extensions.ReplaceAll(rec.Extensions...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities = make(map[uuid.UUID]EntityInstance, len(rec.EntityInstances)+1)
	for _, inst := range rec.EntityInstances {
		f.entities[inst.ID] = inst
	}
	if _, ok := f.entities[rec.Wrapper.ID]; !ok {
		f.entities[rec.Wrapper.ID] = rec.Wrapper.Clone()
	}
	f.relations = make(map[RelationInstanceID]RelationInstance, len(rec.RelationInstances))
	for _, rel := range rec.RelationInstances {
		f.relations[rel.ID()] = rel
	}
	return nil
}
