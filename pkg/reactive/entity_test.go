package reactive

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

func entityType(t *testing.T, namespace, name string, props ...types.PropertyType) *types.EntityType {
	t.Helper()
	id, err := types.NewEntityTypeID(namespace, name)
	require.NoError(t, err)
	return types.NewEntityType(id, "").WithProperties(props...)
}

func componentType(t *testing.T, namespace, name string, props ...types.PropertyType) *types.Component {
	t.Helper()
	id, err := types.NewComponentTypeID(namespace, name)
	require.NoError(t, err)
	return types.NewComponent(id, "", props...)
}

func TestCounterScenario(t *testing.T) {
	counterTy := entityType(t, "demo", "Counter", types.NewPropertyType("count", types.DataTypeNumber))
	e := NewEntityBuilder(counterTy).Build()

	v, ok := e.Get("count")
	require.True(t, ok)
	assert.Equal(t, int64(0), v)

	require.NoError(t, e.Set("count", 5))
	v, _ = e.Get("count")
	assert.Equal(t, 5, v)

	assert.False(t, e.AddProperty("count", types.Mutable, 0))
	v, _ = e.Get("count")
	assert.Equal(t, 5, v)
	assert.Equal(t, []string{"count"}, e.PropertyNames())
}

func TestEntityBuilderDefaults(t *testing.T) {
	et := entityType(t, "demo", "Widget",
		types.NewPropertyType("label", types.DataTypeString),
		types.NewPropertyType("on", types.DataTypeBool),
		types.NewPropertyType("id", types.DataTypeString).WithMutability(types.Immutable).WithDefault("w-1"),
	)
	a := NewEntityBuilder(et).Build()
	b := NewEntityBuilder(et).Build()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, et.Type, a.Type())
	assert.Equal(t, map[string]any{"label": "", "on": false, "id": "w-1"}, a.Properties())
	assert.Empty(t, a.Components())
	assert.Empty(t, a.Behaviours())

	p, ok := a.Property("id")
	require.True(t, ok)
	assert.Equal(t, types.Immutable, p.Mutability())
	assert.Equal(t, a.ID(), p.OwnerID())

	require.NoError(t, a.SetChecked("id", "other"))
	v, _ := a.AsString("id")
	assert.Equal(t, "w-1", v)
}

func TestEntityMissingProperty(t *testing.T) {
	e := NewEntityBuilder(entityType(t, "demo", "Empty")).Build()
	assert.ErrorIs(t, e.Set("nope", 1), ErrPropertyDoesNotExist)
	assert.ErrorIs(t, e.Send("nope", 1), ErrPropertyDoesNotExist)
	assert.ErrorIs(t, e.Tick("nope"), ErrPropertyDoesNotExist)
	assert.ErrorIs(t, e.Observe("nope", 1, func(any) {}), ErrPropertyDoesNotExist)
	_, ok := e.Get("nope")
	assert.False(t, ok)
}

func TestEntityComponentsAndBehaviours(t *testing.T) {
	e := NewEntityBuilder(entityType(t, "demo", "Widget", types.NewPropertyType("label", types.DataTypeString))).Build()
	require.NoError(t, e.Set("label", "kept"))

	labeled := componentType(t, "demo", "Labeled",
		types.NewPropertyType("label", types.DataTypeString).WithDefault("default"),
		types.NewPropertyType("color", types.DataTypeString).WithDefault("red"),
	)
	e.AddComponentWithProperties(labeled)
	assert.True(t, e.IsA(labeled.Type))
	label, _ := e.AsString("label")
	assert.Equal(t, "kept", label, "existing cells are not replaced")
	color, _ := e.AsString("color")
	assert.Equal(t, "red", color)

	assert.True(t, e.RemoveComponent(labeled.Type))
	assert.False(t, e.IsA(labeled.Type))
	assert.True(t, e.HasProperty("color"), "removing a component keeps its cells")

	toggle, err := types.NewBehaviourTypeID("logical", "Toggle")
	require.NoError(t, err)
	assert.False(t, e.BehavesAs(toggle))
	assert.True(t, e.AddBehaviour(toggle))
	assert.True(t, e.BehavesAs(toggle))
	assert.True(t, e.RemoveBehaviour(toggle))
	assert.False(t, e.BehavesAs(toggle))

	assert.True(t, e.RemoveProperty("color"))
	assert.False(t, e.RemoveProperty("color"))
}

func TestEntityTypedAccessors(t *testing.T) {
	e := NewEntityBuilderFor(entityType(t, "demo", "Bag").Type).
		Property("b", true).
		Property("i", 3).
		Property("f", 2.0).
		Property("half", 2.5).
		Property("s", "x").
		Property("a", []any{1}).
		Property("o", map[string]any{"k": 1}).
		Build()

	b, ok := e.AsBool("b")
	assert.True(t, ok && b)
	i, ok := e.AsInt64("i")
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	i, ok = e.AsInt64("f")
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)
	_, ok = e.AsInt64("half")
	assert.False(t, ok)
	f, ok := e.AsFloat64("i")
	assert.True(t, ok)
	assert.InDelta(t, 3.0, f, 0)
	_, ok = e.AsString("i")
	assert.False(t, ok)
	a, ok := e.AsArray("a")
	assert.True(t, ok)
	assert.Len(t, a, 1)
	o, ok := e.AsObject("o")
	assert.True(t, ok)
	assert.Equal(t, 1, o["k"])
}

func TestEntityInstanceSnapshot(t *testing.T) {
	labeled := componentType(t, "demo", "Labeled")
	e := NewEntityBuilder(entityType(t, "demo", "Widget", types.NewPropertyType("label", types.DataTypeString))).
		Description("a widget").
		Component(labeled.Type).
		Build()
	require.NoError(t, e.Set("label", "hello"))

	inst := e.Instance()
	assert.Equal(t, e.ID(), inst.ID)
	assert.Equal(t, "a widget", inst.Description)
	assert.Equal(t, map[string]any{"label": "hello"}, inst.Properties)
	assert.Equal(t, []types.ComponentTypeID{labeled.Type}, inst.Components)

	back := NewEntityFromInstance(inst)
	assert.Equal(t, e.ID(), back.ID())
	assert.Equal(t, e.Properties(), back.Properties())
	assert.True(t, back.IsA(labeled.Type))
}

func TestEntityObserversAcrossProperties(t *testing.T) {
	e := NewEntityBuilderFor(entityType(t, "demo", "Pair").Type).
		Property("in", 0).
		Property("out", 0).
		Build()

	require.NoError(t, e.Observe("in", 1, func(v any) {
		_ = e.Set("out", v.(int)*2)
	}))
	require.NoError(t, e.Set("in", 21))
	out, _ := e.AsInt64("out")
	assert.Equal(t, int64(42), out)

	assert.True(t, e.RemoveObserver("in", 1))
	require.NoError(t, e.Set("in", 1))
	out, _ = e.AsInt64("out")
	assert.Equal(t, int64(42), out)

	count := 0
	require.NoError(t, e.Observe("out", 2, func(any) { count++ }))
	e.TickAll()
	assert.Equal(t, 1, count)
	e.RemoveAllObservers()
	e.TickAll()
	assert.Equal(t, 1, count)
}

func TestEntityConcurrentProperties(t *testing.T) {
	e := NewEntityBuilderFor(entityType(t, "demo", "Busy").Type).
		Property("a", 0).
		Property("b", 0).
		Build()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = e.Set("a", i)
		}()
		go func() {
			defer wg.Done()
			_ = e.Set("b", i)
			e.AddProperty("c", types.Mutable, i)
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"a", "b", "c"}, e.PropertyNames())
}

func TestEntityAsInt64Range(t *testing.T) {
	e := NewEntityBuilderFor(entityType(t, "demo", "Bag").Type).
		Property("max", float64(1<<63)).
		Property("min", float64(-(1 << 63))).
		Property("big", uint64(1<<63)).
		Build()

	_, ok := e.AsInt64("max")
	assert.False(t, ok, "2^63 does not fit in an int64")
	i, ok := e.AsInt64("min")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), i)
	_, ok = e.AsInt64("big")
	assert.False(t, ok)
}

func TestEntityCheckedWithoutPropagation(t *testing.T) {
	et := entityType(t, "demo", "Widget",
		types.NewPropertyType("label", types.DataTypeString),
		types.NewPropertyType("id", types.DataTypeString).WithMutability(types.Immutable).WithDefault("w-1"),
	)
	e := NewEntityBuilder(et).Build()

	var seen []any
	require.NoError(t, e.Observe("label", 1, func(v any) { seen = append(seen, v) }))
	require.NoError(t, e.Observe("id", 1, func(v any) { seen = append(seen, v) }))

	require.NoError(t, e.SetNoPropagateChecked("label", "quiet"))
	require.NoError(t, e.SetNoPropagateChecked("id", "w-2"))
	assert.Empty(t, seen)
	label, _ := e.AsString("label")
	assert.Equal(t, "quiet", label)
	id, _ := e.AsString("id")
	assert.Equal(t, "w-1", id)

	require.NoError(t, e.TickChecked("id"))
	assert.Empty(t, seen)
	require.NoError(t, e.TickChecked("label"))
	assert.Equal(t, []any{"quiet"}, seen)

	assert.ErrorIs(t, e.SetNoPropagateChecked("nope", 1), ErrPropertyDoesNotExist)
	assert.ErrorIs(t, e.TickChecked("nope"), ErrPropertyDoesNotExist)
}

func TestEntityDefaultsAreNotShared(t *testing.T) {
	et := entityType(t, "demo", "Widget",
		types.NewPropertyType("meta", types.DataTypeObject).WithDefault(map[string]any{"k": "orig"}),
		types.NewPropertyType("tags", types.DataTypeArray).WithDefault([]any{"a"}),
	)
	a := NewEntityBuilder(et).Build()

	meta, ok := a.AsObject("meta")
	require.True(t, ok)
	meta["k"] = "changed"
	tags, ok := a.AsArray("tags")
	require.True(t, ok)
	tags[0] = "changed"

	pt, ok := et.Properties.Get("meta")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"k": "orig"}, pt.Default)

	b := NewEntityBuilder(et).Build()
	meta, _ = b.AsObject("meta")
	assert.Equal(t, "orig", meta["k"])
	tags, _ = b.AsArray("tags")
	assert.Equal(t, []any{"a"}, tags)
}
