package types

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Identifier is the constraint satisfied by every namespaced id that can be
// collected in a [TypeIDs] set: the five type id kinds and [BehaviourTypeID].
type Identifier[T any] interface {
	comparable
	String() string
	NamespacedType() NamespacedType
	newFrom(NamespacedType) T
}

// TypeIDs is a concurrent set of ids of one kind. It is shared, not copied:
// every holder of the same *TypeIDs observes every mutation. Iteration order
// of the underlying storage is undefined, so every read that exposes order
// goes through the sorted [TypeIDs.ToSlice] snapshot, and equality and
// hashing are defined on that snapshot. The zero value is an empty set.
type TypeIDs[T Identifier[T]] struct {
	mu  sync.RWMutex
	ids map[T]struct{}
}

// Id sets for every kind.
type (
	ComponentTypeIDs = TypeIDs[ComponentTypeID]
	EntityTypeIDs    = TypeIDs[EntityTypeID]
	RelationTypeIDs  = TypeIDs[RelationTypeID]
	FlowTypeIDs      = TypeIDs[FlowTypeID]
	ExtensionTypeIDs = TypeIDs[ExtensionTypeID]
	BehaviourTypeIDs = TypeIDs[BehaviourTypeID]
)

// NewTypeIDs returns a set containing ids.
func NewTypeIDs[T Identifier[T]](ids ...T) *TypeIDs[T] {
	s := &TypeIDs[T]{ids: make(map[T]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Insert adds id and reports whether it was not already present.
func (s *TypeIDs[T]) Insert(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[T]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// InsertAll adds every id.
func (s *TypeIDs[T]) InsertAll(ids ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[T]struct{}, len(ids))
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// ReplaceAll atomically replaces the contents of the set with ids.
func (s *TypeIDs[T]) ReplaceAll(ids ...T) {
	next := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()
}

// Remove deletes id and reports whether it was present.
func (s *TypeIDs[T]) Remove(id T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Contains reports whether id is in the set.
func (s *TypeIDs[T]) Contains(id T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids.
func (s *TypeIDs[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IsEmpty reports whether the set has no ids.
func (s *TypeIDs[T]) IsEmpty() bool {
	return s.Len() == 0
}

// ToSlice returns a snapshot sorted by namespace, then type name.
func (s *TypeIDs[T]) ToSlice() []T {
	s.mu.RLock()
	out := make([]T, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b T) int {
		return a.NamespacedType().Compare(b.NamespacedType())
	})
	return out
}

// GetByNamespace returns the sorted ids whose namespace equals ns.
func (s *TypeIDs[T]) GetByNamespace(ns Namespace) []T {
	all := s.ToSlice()
	out := all[:0]
	for _, id := range all {
		if id.NamespacedType().Namespace() == ns {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s *TypeIDs[T]) Clone() *TypeIDs[T] {
	return NewTypeIDs(s.ToSlice()...)
}

// Equal compares the sorted snapshots of both sets.
func (s *TypeIDs[T]) Equal(other *TypeIDs[T]) bool {
	return slices.Equal(s.ToSlice(), other.ToSlice())
}

// Hash returns a hash of the sorted snapshot. Sets that are [TypeIDs.Equal]
// hash equally.
func (s *TypeIDs[T]) Hash() uint64 {
	d := xxhash.New()
	for _, id := range s.ToSlice() {
		_, _ = d.WriteString(id.String())
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// MarshalJSON encodes the sorted snapshot as an array of canonical strings.
func (s *TypeIDs[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToSlice())
}

// UnmarshalJSON replaces the contents with the decoded array.
func (s *TypeIDs[T]) UnmarshalJSON(data []byte) error {
	var ids []T
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.ReplaceAll(ids...)
	return nil
}

// WithNamespace returns a builder view that inserts ids of namespace ns.
func (s *TypeIDs[T]) WithNamespace(ns Namespace) *NamespacedTypeIDs[T] {
	return &NamespacedTypeIDs[T]{ids: s, namespace: ns}
}

// NamespacedTypeIDs is a fluent, namespace-scoped view over a [TypeIDs] set.
// The first validation error stops further insertions and is reported by Err.
type NamespacedTypeIDs[T Identifier[T]] struct {
	ids       *TypeIDs[T]
	namespace Namespace
	err       error
}

// Ty inserts the id namespace::typeName.
func (b *NamespacedTypeIDs[T]) Ty(typeName string) *NamespacedTypeIDs[T] {
	if b.err != nil {
		return b
	}
	nt, err := NewNamespacedType(b.namespace, typeName)
	if err != nil {
		b.err = err
		return b
	}
	var zero T
	b.ids.Insert(zero.newFrom(nt))
	return b
}

// Err returns the first validation error, if any.
func (b *NamespacedTypeIDs[T]) Err() error {
	return b.err
}

// IDs returns the underlying set.
func (b *NamespacedTypeIDs[T]) IDs() *TypeIDs[T] {
	return b.ids
}
