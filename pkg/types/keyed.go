package types

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// keyedItem is an element of a keyedSet: it knows its own key, the string
// the set sorts it by, and how to copy itself without sharing payloads.
type keyedItem[K comparable, V any] interface {
	itemKey() K
	sortKey() string
	clone() V
}

// keyedSet is the concurrent keyed collection behind PropertyTypes and
// Extensions. Each operation is atomic; a rejected add/update/remove leaves
// the set untouched. Items are cloned on the way in and on the way out, so
// callers never share default or value payloads with the set. The zero value
// is empty and ready to use.
type keyedSet[K comparable, V keyedItem[K, V]] struct {
	mu    sync.RWMutex
	items map[K]V
}

func (s *keyedSet[K, V]) add(v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[K]V)
	}
	if _, ok := s.items[v.itemKey()]; ok {
		return false
	}
	s.items[v.itemKey()] = v.clone()
	return true
}

// upsert inserts or overwrites v and returns the previous value, if any.
func (s *keyedSet[K, V]) upsert(v V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[K]V)
	}
	old, ok := s.items[v.itemKey()]
	s.items[v.itemKey()] = v.clone()
	return old, ok
}

// update replaces the item stored under key with v. When v carries a
// different key the item is renamed; renaming onto an existing key fails with
// conflict set.
func (s *keyedSet[K, V]) update(key K, v V) (old V, found, conflict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, found = s.items[key]
	if !found {
		return old, false, false
	}
	newKey := v.itemKey()
	if newKey != key {
		if _, taken := s.items[newKey]; taken {
			return old, true, true
		}
		delete(s.items, key)
	}
	s.items[newKey] = v.clone()
	return old, true, false
}

func (s *keyedSet[K, V]) remove(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return v, ok
}

func (s *keyedSet[K, V]) get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return v, false
	}
	return v.clone(), true
}

func (s *keyedSet[K, V]) has(key K) bool {
	_, ok := s.get(key)
	return ok
}

func (s *keyedSet[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *keyedSet[K, V]) slice() []V {
	s.mu.RLock()
	out := make([]V, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v.clone())
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b V) int {
		return strings.Compare(a.sortKey(), b.sortKey())
	})
	return out
}

func (s *keyedSet[K, V]) replaceAll(items []V) {
	next := make(map[K]V, len(items))
	for _, v := range items {
		next[v.itemKey()] = v.clone()
	}
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// addMissing adds every item whose key is absent and returns the added items.
// Present keys are never overwritten.
func (s *keyedSet[K, V]) addMissing(items []V) []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[K]V)
	}
	var added []V
	for _, v := range items {
		if _, ok := s.items[v.itemKey()]; ok {
			continue
		}
		s.items[v.itemKey()] = v.clone()
		added = append(added, v)
	}
	return added
}

// cloneValue deep-copies the composite shapes a JSON decoder produces
// (objects and arrays). Scalars are returned as is.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(x)
	case map[string]string:
		return maps.Clone(x)
	}
	return v
}
