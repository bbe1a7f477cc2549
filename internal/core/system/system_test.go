package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tickcore/internal/core/ecs"
	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
	"github.com/zeusync/tickcore/internal/core/service"
)

type position struct{ X, Y int }

type health struct{ HP int }

type move struct {
	ID     ecs.EntityID
	DX, DY int
}

func (move) Type() string { return "move" }

type recorder struct {
	name    string
	journal *[]string
	failOn  string
	ticks   []TickEvent
	onTick  func(TickEvent)
}

func (p *recorder) Bindings() []bus.Binding {
	return []bus.Binding{
		bus.On(func(ev TickEvent) error {
			p.ticks = append(p.ticks, ev)
			if p.onTick != nil {
				p.onTick(ev)
			}
			return nil
		}),
	}
}

func (p *recorder) OnStart(*service.Service) error {
	if p.failOn == "start" {
		return errors.New(p.name + " cannot start")
	}
	*p.journal = append(*p.journal, "start:"+p.name)
	return nil
}

func (p *recorder) OnStop(*service.Service) error {
	*p.journal = append(*p.journal, "stop:"+p.name)
	if p.failOn == "stop" {
		return errors.New(p.name + " cannot stop")
	}
	return nil
}

func newRecorder(name string, journal *[]string) (*recorder, *service.Service) {
	p := &recorder{name: name, journal: journal}
	return p, service.New(name, p)
}

func TestManagerRegister(t *testing.T) {
	m := NewManager(nil)
	var journal []string
	_, a := newRecorder("a", &journal)
	_, b := newRecorder("b", &journal)

	require.NoError(t, m.Register(a))
	require.NoError(t, m.Register(b))
	assert.Equal(t, []*service.Service{a, b}, m.List())
	assert.True(t, m.Has("a"))

	_, dup := newRecorder("a", &journal)
	err := m.Register(dup)
	assert.ErrorIs(t, err, errs.ErrDuplicateService)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))

	got, err := m.Get("b")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, errs.ErrServiceNotFound)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.ErrorIs(t, m.Register(nil), errs.ErrInvalidHandler)
}

func TestManagerStartStopOrder(t *testing.T) {
	m := NewManager(nil)
	var journal []string
	for _, name := range []string{"a", "b", "c"} {
		_, svc := newRecorder(name, &journal)
		require.NoError(t, m.Register(svc))
	}
	b := bus.New()

	require.NoError(t, m.StartAll(b))
	assert.Equal(t, 3, b.SubscriberCount())
	require.NoError(t, m.StopAll())
	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}, journal)
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestManagerRollsBackFailedStart(t *testing.T) {
	m := NewManager(nil)
	var journal []string
	_, a := newRecorder("a", &journal)
	_, b := newRecorder("b", &journal)
	bad, c := newRecorder("c", &journal)
	bad.failOn = "start"
	for _, svc := range []*service.Service{a, b, c} {
		require.NoError(t, m.Register(svc))
	}
	eb := bus.New()

	err := m.StartAll(eb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c cannot start")
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, journal)
	for _, svc := range m.List() {
		assert.False(t, svc.IsRunning(), svc.Name())
	}
	assert.Equal(t, 0, eb.SubscriberCount())
}

func TestManagerStopAllJoinsErrors(t *testing.T) {
	m := NewManager(nil)
	var journal []string
	failing, a := newRecorder("a", &journal)
	failing.failOn = "stop"
	_, b := newRecorder("b", &journal)
	require.NoError(t, m.Register(a))
	require.NoError(t, m.Register(b))
	require.NoError(t, m.StartAll(bus.New()))

	err := m.StopAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a cannot stop")
	assert.False(t, a.IsRunning())
	assert.False(t, b.IsRunning())
	assert.NoError(t, m.StopAll())
}

func TestManagerUnregister(t *testing.T) {
	m := NewManager(nil)
	var journal []string
	_, a := newRecorder("a", &journal)
	require.NoError(t, m.Register(a))
	require.NoError(t, m.StartAll(bus.New()))

	require.NoError(t, m.Unregister("a"))
	assert.False(t, a.IsRunning())
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Unregister("a"), errs.ErrServiceNotFound)
}

func newWorld(t *testing.T, opts ...WorldOption) *World {
	t.Helper()
	reg, err := registry.NewBuilder().Register(position{}, "position").Build()
	require.NoError(t, err)
	return NewWorld(reg, ecs.NewStore(reg), bus.New(), NewManager(nil), opts...)
}

func TestWorldLifecycle(t *testing.T) {
	w := newWorld(t)
	assert.ErrorIs(t, w.Tick(time.Millisecond), errs.ErrNotRunning)
	assert.ErrorIs(t, w.Stop(), errs.ErrNotRunning)
	assert.ErrorIs(t, w.Run(context.Background()), errs.ErrNotRunning)

	require.NoError(t, w.Start())
	assert.True(t, w.Registry().Frozen())
	assert.ErrorIs(t, w.Start(), errs.ErrAlreadyRunning)

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

func TestFailedWorldStartLeavesRegistryOpen(t *testing.T) {
	w := newWorld(t)
	var journal []string
	bad, svc := newRecorder("loader", &journal)
	bad.failOn = "start"
	require.NoError(t, w.Services().Register(svc))

	err := w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader cannot start")
	assert.False(t, w.IsRunning())
	assert.False(t, w.Registry().Frozen())

	// The registry still takes components, and a retry can succeed.
	require.NoError(t, registry.Register[health](w.Registry(), "health"))
	bad.failOn = ""
	require.NoError(t, w.Start())
	assert.True(t, w.Registry().Frozen())
}

func TestWorldTickDrainsFollowUps(t *testing.T) {
	w := newWorld(t)
	var journal []string
	p, svc := newRecorder("ticker", &journal)
	require.NoError(t, w.Services().Register(svc))

	id, err := w.Store().CreateFrom(position{})
	require.NoError(t, err)
	p.onTick = func(TickEvent) {
		require.NoError(t, svc.Post(move{ID: id, DX: 1, DY: 2}))
	}
	_, err = w.Bus().Subscribe(bus.Handlers{
		bus.On(func(ev move) error {
			m, ok := w.Store().GetMutable(ev.ID)
			if !ok {
				return errs.ErrEntityNotFound
			}
			pos, _ := ecs.Get[position](m)
			return m.Set(position{X: pos.X + ev.DX, Y: pos.Y + ev.DY})
		}),
	})
	require.NoError(t, err)

	require.NoError(t, w.Start())
	require.NoError(t, w.Tick(10*time.Millisecond))
	require.NoError(t, w.Tick(20*time.Millisecond))

	assert.Equal(t, uint64(2), w.FrameCount())
	assert.Equal(t, []TickEvent{{Frame: 1, Delta: 10 * time.Millisecond}, {Frame: 2, Delta: 20 * time.Millisecond}}, p.ticks)
	assert.Equal(t, 0, w.Bus().Pending())

	v, _ := w.Store().Get(id)
	pos, _ := ecs.Get[position](v)
	assert.Equal(t, position{X: 2, Y: 4}, pos)
}

func TestWorldRunStopsOnCancel(t *testing.T) {
	w := newWorld(t, WithTickInterval(time.Millisecond))
	assert.Equal(t, time.Millisecond, w.TickInterval())

	var journal []string
	p, svc := newRecorder("ticker", &journal)
	require.NoError(t, w.Services().Register(svc))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.onTick = func(ev TickEvent) {
		if ev.Frame == 3 {
			cancel()
		}
	}

	require.NoError(t, w.Start())
	require.NoError(t, w.Run(ctx))
	assert.GreaterOrEqual(t, w.FrameCount(), uint64(3))
	require.NoError(t, w.Stop())
	assert.Equal(t, []string{"start:ticker", "stop:ticker"}, journal)
}

// Position registered, entity 1 from {Position{0,0}}, Move(3,4) posted and
// drained yields Position{3,4}.
func TestEndToEndMove(t *testing.T) {
	reg := registry.New()
	require.NoError(t, registry.Register[position](reg, "Position"))
	store := ecs.NewStore(reg)
	b := bus.New()

	prefab, err := ecs.NewPrefab(reg, "walker", position{X: 0, Y: 0})
	require.NoError(t, err)
	id, err := store.Create(prefab)
	require.NoError(t, err)
	require.Equal(t, ecs.EntityID(1), id)

	_, err = b.Subscribe(bus.Handlers{
		bus.On(func(ev move) error {
			m, ok := store.GetMutable(ev.ID)
			if !ok {
				return errs.ErrEntityNotFound
			}
			pos, _ := ecs.Get[position](m)
			return m.Set(position{X: pos.X + ev.DX, Y: pos.Y + ev.DY})
		}),
	})
	require.NoError(t, err)

	require.NoError(t, b.Post(move{ID: 1, DX: 3, DY: 4}))
	require.NoError(t, b.PublishPosts())

	v, ok := store.Get(1)
	require.True(t, ok)
	pos, ok := ecs.Get[position](v)
	require.True(t, ok)
	assert.Equal(t, position{X: 3, Y: 4}, pos)
}
