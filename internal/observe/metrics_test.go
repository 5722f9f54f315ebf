package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/mesh-intelligence/lattice/pkg/reactive"
	"github.com/mesh-intelligence/lattice/pkg/types"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

// sumByAttr collects the metric name and returns its int64 data points keyed
// by the value of attribute key.
func sumByAttr(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != name {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %q is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestObserverRecordsTypeEvents(t *testing.T) {
	m, reader := newTestMetrics(t)
	ts := typesystem.New(typesystem.WithObserver(m.Observer()))

	a, err := types.NewComponentTypeID("core", "A")
	require.NoError(t, err)
	b, err := types.NewComponentTypeID("core", "B")
	require.NoError(t, err)
	_, err = ts.Components().Register(types.NewComponent(a, ""))
	require.NoError(t, err)
	_, err = ts.Components().Register(types.NewComponent(b, ""))
	require.NoError(t, err)
	_, err = ts.Components().AddProperty(a, types.NewPropertyType("x", types.DataTypeNumber))
	require.NoError(t, err)
	_, ok := ts.Components().Delete(b)
	require.True(t, ok)

	events := sumByAttr(t, reader, "lattice.typesystem.events", "op")
	assert.Equal(t, map[string]int64{"type_created": 2, "property_added": 1, "type_deleted": 1}, events)

	gauge := sumByAttr(t, reader, "lattice.typesystem.types", "kind")
	assert.Equal(t, map[string]int64{"component": 1}, gauge)
}

func TestInstrumentEntityCountsPropagations(t *testing.T) {
	m, reader := newTestMetrics(t)
	ty, err := types.NewEntityTypeID("demo", "Counter")
	require.NoError(t, err)
	e := reactive.NewEntityBuilderFor(ty).Property("count", 0).Property("label", "").Build()

	m.InstrumentEntity(context.Background(), e, 99)
	require.NoError(t, e.Set("count", 1))
	require.NoError(t, e.Set("count", 2))
	require.NoError(t, e.SetNoPropagate("label", "quiet"))
	require.NoError(t, e.Tick("label"))

	got := sumByAttr(t, reader, "lattice.reactive.propagations", "property")
	assert.Equal(t, map[string]int64{"count": 2, "label": 1}, got)
}
