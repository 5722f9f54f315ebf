package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lattice/internal/config"
	"github.com/mesh-intelligence/lattice/pkg/types"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

func attach(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(config.Config{Backend: config.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// seed registers a Named component, a Widget entity type using it, an Owns
// relation type and a Pipeline flow type.
func seed(t *testing.T) *typesystem.TypeSystem {
	t.Helper()
	ts := typesystem.New()

	named, err := types.NewComponentTypeID("core", "Named")
	require.NoError(t, err)
	_, err = ts.Components().Register(types.NewComponent(named, "has a name",
		types.NewPropertyType("name", types.DataTypeString)))
	require.NoError(t, err)

	widget, err := types.NewEntityTypeID("demo", "Widget")
	require.NoError(t, err)
	_, err = ts.EntityTypes().Register(types.NewEntityType(widget, "a widget").
		WithComponents(named).
		WithProperties(types.NewPropertyType("size", types.DataTypeNumber).WithDefault(int64(3))))
	require.NoError(t, err)

	owns, err := types.NewRelationTypeID("demo", "Owns")
	require.NoError(t, err)
	_, err = ts.RelationTypes().Register(types.NewRelationType(
		types.EntityTypeEndpoint(widget), owns, types.AnyEntityType(), "").WithComponents(named))
	require.NoError(t, err)

	pipeline, err := types.NewFlowTypeID("demo", "Pipeline")
	require.NoError(t, err)
	wrapper := types.NewEntityInstance(widget)
	_, err = ts.FlowTypes().Register(types.NewFlowType(pipeline, "a flow", wrapper))
	require.NoError(t, err)
	return ts
}

func TestAttachDetach(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	cfg := config.Config{Backend: config.BackendSQLite, DataDir: dir}

	require.NoError(t, b.Attach(cfg))
	assert.ErrorIs(t, b.Attach(cfg), ErrAlreadyAttached)
	assert.FileExists(t, filepath.Join(dir, dbFileName))
	for _, kf := range kindFiles {
		info, err := os.Stat(filepath.Join(dir, kf.file))
		require.NoError(t, err, kf.file)
		assert.Zero(t, info.Size(), kf.file)
	}
	assert.Equal(t, dir, b.DataDir())

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	_, err := b.List(types.KindComponent, types.Namespace{})
	assert.ErrorIs(t, err, ErrDetached)
	_, err = b.Store(typesystem.New())
	assert.ErrorIs(t, err, ErrDetached)
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(config.Config{DataDir: t.TempDir()}), config.ErrBackendEmpty)
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := seed(t)

	b := attach(t, dir)
	counts, err := b.Store(src)
	require.NoError(t, err)
	assert.Equal(t, Counts{Components: 1, EntityTypes: 1, RelationTypes: 1, FlowTypes: 1}, counts)
	require.NoError(t, b.Detach())

	// A second backend rebuilds SQLite from the JSONL files.
	b2 := attach(t, dir)
	dst := typesystem.New()
	counts, err = b2.Restore(dst)
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Total())

	for _, want := range src.EntityTypes().GetAll() {
		got, ok := dst.EntityTypes().Get(want.Type)
		require.True(t, ok)
		assert.True(t, want.Properties.Equal(&got.Properties))
		assert.True(t, want.Components.Equal(&got.Components))
		assert.Equal(t, want.Description, got.Description)
	}
	for _, want := range src.FlowTypes().GetAll() {
		got, ok := dst.FlowTypes().Get(want.Type)
		require.True(t, ok)
		assert.Equal(t, want.ID(), got.ID())
		assert.Len(t, got.EntityInstances(), 1)
	}

	counts, err = b2.Restore(dst)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Total())
	assert.Equal(t, 4, counts.Skipped)
}

func TestGetListDelete(t *testing.T) {
	b := attach(t, t.TempDir())
	_, err := b.Store(seed(t))
	require.NoError(t, err)

	widget, err := types.ParseTypeDefinition("e__demo__Widget")
	require.NoError(t, err)
	rec, err := b.Get(widget)
	require.NoError(t, err)
	assert.Equal(t, widget, rec.Type)
	assert.False(t, rec.UpdatedAt.IsZero())
	var et types.EntityType
	require.NoError(t, json.Unmarshal(rec.Data, &et))
	assert.Equal(t, "a widget", et.Description)

	demo := types.MustNamespace("demo")
	list, err := b.List(types.KindEntityType, demo)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = b.List(types.KindComponent, demo)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = b.List(types.KindExtension, types.Namespace{})
	assert.ErrorIs(t, err, ErrKindNotStored)

	named, err := types.NewComponentTypeID("core", "Named")
	require.NoError(t, err)
	refs, err := b.Referencing(named)
	require.NoError(t, err)
	assert.Equal(t, []string{"e__demo__Widget", "r__demo__Owns"}, defStrings(refs))

	require.NoError(t, b.Delete(widget))
	_, err = b.Get(widget)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, b.Delete(widget), ErrNotFound)

	refs, err = b.Referencing(named)
	require.NoError(t, err)
	assert.Equal(t, []string{"r__demo__Owns"}, defStrings(refs))

	data, err := os.ReadFile(filepath.Join(b.DataDir(), entityTypesJSONL))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}

func TestStoreKeepsOtherRecords(t *testing.T) {
	b := attach(t, t.TempDir())
	_, err := b.Store(seed(t))
	require.NoError(t, err)

	ts := typesystem.New()
	extra, err := types.NewComponentTypeID("core", "Extra")
	require.NoError(t, err)
	_, err = ts.Components().Register(types.NewComponent(extra, ""))
	require.NoError(t, err)
	counts, err := b.Store(ts)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Components)

	list, err := b.List(types.KindComponent, types.Namespace{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func defStrings(defs []types.TypeDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.String()
	}
	return out
}
