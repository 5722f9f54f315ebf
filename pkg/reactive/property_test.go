package reactive

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

type sink struct {
	mu     sync.Mutex
	values []any
}

func (s *sink) observe(v any) {
	s.mu.Lock()
	s.values = append(s.values, v)
	s.mu.Unlock()
}

func (s *sink) got() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.values...)
}

func TestPropertyPropagation(t *testing.T) {
	p := NewProperty(uuid.New(), "value", types.Mutable, 0)
	a, b := &sink{}, &sink{}
	p.ObserveWithHandle(a.observe, 1)
	p.ObserveWithHandle(b.observe, 2)

	p.Set("v")
	assert.Equal(t, "v", p.Get())
	assert.Equal(t, []any{"v"}, a.got())
	assert.Equal(t, []any{"v"}, b.got())

	p.SetNoPropagate("v2")
	assert.Equal(t, "v2", p.Get())
	assert.Len(t, a.got(), 1)
	assert.Len(t, b.got(), 1)

	p.Send("v3")
	assert.Equal(t, "v2", p.Get())
	assert.Equal(t, []any{"v", "v3"}, a.got())
	assert.Equal(t, []any{"v", "v3"}, b.got())

	p.Tick()
	assert.Equal(t, []any{"v", "v3", "v2"}, a.got())
	assert.Equal(t, []any{"v", "v3", "v2"}, b.got())
}

func TestPropertyChecked(t *testing.T) {
	p := NewProperty(uuid.New(), "fixed", types.Immutable, 1)
	s := &sink{}
	p.ObserveWithHandle(s.observe, 1)

	p.SetChecked(2)
	p.SetNoPropagateChecked(3)
	p.TickChecked()
	assert.Equal(t, 1, p.Get())
	assert.Empty(t, s.got())

	p.Set(4)
	assert.Equal(t, 4, p.Get(), "unchecked setters ignore mutability")

	m := NewProperty(uuid.New(), "free", "", 1)
	assert.Equal(t, types.Mutable, m.Mutability())
	m.SetChecked(2)
	assert.Equal(t, 2, m.Get())
}

func TestPropertyObserverHandles(t *testing.T) {
	p := NewProperty(uuid.New(), "value", types.Mutable, nil)
	var order []string
	p.ObserveWithHandle(func(any) { order = append(order, "first") }, 10)
	p.ObserveWithHandle(func(any) { order = append(order, "second") }, 20)
	p.ObserveWithHandle(func(any) { order = append(order, "replaced") }, 10)

	p.Set(1)
	assert.Equal(t, []string{"replaced", "second"}, order)

	assert.True(t, p.RemoveObserver(10))
	assert.False(t, p.RemoveObserver(10))
	order = nil
	p.Set(2)
	assert.Equal(t, []string{"second"}, order)

	p.RemoveObservers()
	assert.Equal(t, 0, p.ObserverCount())
	order = nil
	p.Set(3)
	assert.Empty(t, order)
}

func TestPropertySubscriberMayUnsubscribe(t *testing.T) {
	p := NewProperty(uuid.New(), "value", types.Mutable, nil)
	calls := 0
	p.ObserveWithHandle(func(any) {
		calls++
		p.RemoveObserver(1)
	}, 1)
	p.Set(1)
	p.Set(2)
	assert.Equal(t, 1, calls)
}

func TestPropertyConcurrentSetOrdering(t *testing.T) {
	p := NewProperty(uuid.New(), "value", types.Mutable, 0)
	a, b := &sink{}, &sink{}
	p.ObserveWithHandle(a.observe, 1)
	p.ObserveWithHandle(b.observe, 2)

	var g errgroup.Group
	for i := range 100 {
		g.Go(func() error {
			p.Set(i)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, a.got(), 100)
	assert.Equal(t, a.got(), b.got(), "every subscriber sees the same serialization order")
	last := a.got()[99]
	assert.Equal(t, last, p.Get())
}
