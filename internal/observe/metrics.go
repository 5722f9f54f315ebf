// Package observe records OpenTelemetry metrics for type system mutations
// and reactive property propagation.
//
// Tests should use [NewMetrics] with a ManualReader-backed provider; the
// process uses [DefaultMetrics], which reads the global provider.
package observe

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mesh-intelligence/lattice/pkg/reactive"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

// meterName is the instrumentation scope name used for all lattice metrics.
const meterName = "github.com/mesh-intelligence/lattice"

// Metrics holds the metric instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// TypeEvents counts type system mutations. Attributes: op, kind.
	TypeEvents metric.Int64Counter

	// Types tracks the number of registered types. Attribute: kind.
	Types metric.Int64UpDownCounter

	// Propagations counts values delivered to property subscribers.
	// Attribute: property.
	Propagations metric.Int64Counter

	logger *slog.Logger
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{logger: slog.Default()}

	if met.TypeEvents, err = m.Int64Counter("lattice.typesystem.events",
		metric.WithDescription("Type system mutations by op and kind."),
	); err != nil {
		return nil, err
	}
	if met.Types, err = m.Int64UpDownCounter("lattice.typesystem.types",
		metric.WithDescription("Number of registered types by kind."),
	); err != nil {
		return nil, err
	}
	if met.Propagations, err = m.Int64Counter("lattice.reactive.propagations",
		metric.WithDescription("Values propagated to property subscribers by property name."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] created from
// [otel.GetMeterProvider] on first call.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// WithLogger returns m logging through l.
func (m *Metrics) WithLogger(l *slog.Logger) *Metrics {
	if l != nil {
		m.logger = l
	}
	return m
}

// Observer returns a type system observer recording every event.
func (m *Metrics) Observer() typesystem.Observer {
	return typesystem.ObserverFunc(func(ev typesystem.Event) {
		m.RecordEvent(context.Background(), ev)
	})
}

// RecordEvent counts ev and adjusts the type gauge for creations and
// deletions.
func (m *Metrics) RecordEvent(ctx context.Context, ev typesystem.Event) {
	kind := attribute.String("kind", ev.Type.Kind.String())
	m.TypeEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("op", string(ev.Op)), kind))
	switch ev.Op {
	case typesystem.OpTypeCreated:
		m.Types.Add(ctx, 1, metric.WithAttributes(kind))
	case typesystem.OpTypeDeleted:
		m.Types.Add(ctx, -1, metric.WithAttributes(kind))
	}
	m.logger.Debug("type system event", "op", ev.Op, "type", ev.Type.String())
}

// CountPropagation returns a subscriber that counts values delivered for
// property.
func (m *Metrics) CountPropagation(ctx context.Context, property string) reactive.Subscriber {
	attrs := metric.WithAttributes(attribute.String("property", property))
	return func(any) {
		m.Propagations.Add(ctx, 1, attrs)
	}
}

// InstrumentEntity subscribes a propagation counter under handle to every
// property e currently has.
func (m *Metrics) InstrumentEntity(ctx context.Context, e *reactive.Entity, handle uint64) {
	for _, name := range e.PropertyNames() {
		_ = e.Observe(name, handle, m.CountPropagation(ctx, name))
	}
}
