package movement

import (
	"errors"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/ecs"
	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/service"
	"github.com/zeusync/tickcore/internal/core/system"
)

const ServiceName = "movement"

var (
	positionType = reflect.TypeFor[Position]()
	velocityType = reflect.TypeFor[Velocity]()
)

// System applies Move events, integrates Velocity every tick and answers
// PositionQuery requests.
type System struct {
	store *ecs.Store
	svc   *service.Service
	log   log.Log
}

func New(store *ecs.Store, l log.Log) *System {
	if l == nil {
		l = log.NewNop()
	}
	m := &System{store: store, log: l}
	m.svc = service.New(ServiceName, m, service.WithLogger(l))
	return m
}

// Service returns the lifecycle handle to register with a system.Manager.
func (m *System) Service() *service.Service {
	return m.svc
}

func (m *System) Bindings() []bus.Binding {
	return []bus.Binding{
		bus.On(m.onMove),
		bus.On(m.onTick),
		bus.On(m.onPositionQuery),
	}
}

func (m *System) OnStart(*service.Service) error {
	m.log.Info("movement online", log.Int("movers", len(m.store.Query(positionType, velocityType))))
	return nil
}

func (m *System) onMove(ev Move) error {
	return m.displace(ev.ID, ev.DX, ev.DY)
}

func (m *System) onTick(ev system.TickEvent) error {
	dt := ev.Delta.Seconds()
	if dt <= 0 {
		return nil
	}
	var failed []error
	for _, id := range m.store.Query(positionType, velocityType) {
		v, _ := m.store.Get(id)
		vel, _ := ecs.Get[Velocity](v)
		if vel.IsZero() {
			continue
		}
		if err := m.displace(id, vel.DX*dt, vel.DY*dt); err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return eris.Wrapf(errors.Join(failed...), "integrate frame %d", ev.Frame)
	}
	return nil
}

func (m *System) onPositionQuery(q *PositionQuery) error {
	pos, err := m.position(q.ID)
	if err != nil {
		return err
	}
	return q.Complete(pos)
}

func (m *System) displace(id ecs.EntityID, dx, dy float64) error {
	mut, ok := m.store.GetMutable(id)
	if !ok {
		return eris.Wrapf(errs.ErrEntityNotFound, "move entity %s", id)
	}
	from, ok := ecs.Get[Position](mut)
	if !ok {
		return eris.Wrapf(errs.ErrComponentNotFound, "move entity %s: no position", id)
	}
	to := Position{X: from.X + dx, Y: from.Y + dy}
	if err := mut.Set(to); err != nil {
		return err
	}
	return m.svc.Post(Moved{ID: id, From: from, To: to})
}

func (m *System) position(id ecs.EntityID) (Position, error) {
	v, ok := m.store.Get(id)
	if !ok {
		return Position{}, eris.Wrapf(errs.ErrEntityNotFound, "position of entity %s", id)
	}
	pos, ok := ecs.Get[Position](v)
	if !ok {
		return Position{}, eris.Wrapf(errs.ErrComponentNotFound, "position of entity %s", id)
	}
	return pos, nil
}
