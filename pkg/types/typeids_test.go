package types

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustComponent(t *testing.T, namespace, name string) ComponentTypeID {
	t.Helper()
	id, err := NewComponentTypeID(namespace, name)
	require.NoError(t, err)
	return id
}

func mustEntityType(t *testing.T, namespace, name string) EntityTypeID {
	t.Helper()
	id, err := NewEntityTypeID(namespace, name)
	require.NoError(t, err)
	return id
}

func TestTypeIDsSortedSnapshot(t *testing.T) {
	a := mustComponent(t, "base", "Named")
	b := mustComponent(t, "demo", "Labeled")
	c := mustComponent(t, "demo", "Counted")

	first := NewTypeIDs(b, a, c)
	second := NewTypeIDs[ComponentTypeID]()
	second.Insert(c)
	second.Insert(a)
	second.Insert(b)

	want := []ComponentTypeID{a, c, b}
	assert.Equal(t, want, first.ToSlice())
	assert.Equal(t, want, second.ToSlice())
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Hash(), second.Hash())

	second.Remove(a)
	assert.False(t, first.Equal(second))
	assert.NotEqual(t, first.Hash(), second.Hash())
}

func TestTypeIDsSharedMutation(t *testing.T) {
	var ids ComponentTypeIDs
	holder := &ids
	id := mustComponent(t, "demo", "Labeled")

	assert.True(t, holder.Insert(id))
	assert.False(t, ids.Insert(id))
	assert.True(t, ids.Contains(id))
	assert.Equal(t, 1, ids.Len())

	clone := ids.Clone()
	assert.True(t, ids.Remove(id))
	assert.False(t, ids.Remove(id))
	assert.True(t, ids.IsEmpty())
	assert.True(t, clone.Contains(id), "clone is independent")
}

func TestTypeIDsWithNamespace(t *testing.T) {
	var ids ComponentTypeIDs
	b := ids.WithNamespace(MustNamespace("demo")).Ty("Labeled").Ty("Counted")
	require.NoError(t, b.Err())
	assert.Equal(t, 2, ids.Len())
	assert.Len(t, ids.GetByNamespace(MustNamespace("demo")), 2)
	assert.Empty(t, ids.GetByNamespace(MustNamespace("other")))

	bad := ids.WithNamespace(MustNamespace("demo")).Ty("lower").Ty("Never")
	assert.ErrorIs(t, bad.Err(), ErrNotATypeSegment)
	assert.False(t, ids.Contains(mustComponent(t, "demo", "Never")))
}

func TestTypeIDsJSON(t *testing.T) {
	ids := NewTypeIDs(mustEntityType(t, "demo", "Widget"), mustEntityType(t, "demo", "Counter"))
	data, err := json.Marshal(ids)
	require.NoError(t, err)
	assert.JSONEq(t, `["e__demo__Counter","e__demo__Widget"]`, string(data))

	var decoded EntityTypeIDs
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, ids.Equal(&decoded))
}

func TestTypeIDsConcurrentInsert(t *testing.T) {
	var ids ComponentTypeIDs
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var wg sync.WaitGroup
	for _, name := range names {
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, _ := NewComponentTypeID("demo", name)
				ids.Insert(id)
				_ = ids.ToSlice()
			}()
		}
	}
	wg.Wait()
	assert.Equal(t, len(names), ids.Len())
}
