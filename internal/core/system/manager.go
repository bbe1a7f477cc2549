package system

import (
	"errors"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/service"
)

// Manager orchestrates the services of a World.
// Services start in registration order and stop in reverse order.
type Manager struct {
	services []*service.Service
	byName   map[string]*service.Service
	log      log.Log
}

func NewManager(l log.Log) *Manager {
	if l == nil {
		l = log.NewNop()
	}
	return &Manager{
		byName: make(map[string]*service.Service),
		log:    l,
	}
}

// Register adds svc. Names must be unique within the manager.
func (m *Manager) Register(svc *service.Service) error {
	if svc == nil {
		return eris.Wrap(errs.ErrInvalidHandler, "register nil service")
	}
	if _, ok := m.byName[svc.Name()]; ok {
		return eris.Wrapf(errs.ErrDuplicateService, "register %s", svc.Name())
	}
	m.services = append(m.services, svc)
	m.byName[svc.Name()] = svc
	m.log.Debug("service registered", log.String("service", svc.Name()))
	return nil
}

// Unregister stops the named service if it is running and forgets it.
func (m *Manager) Unregister(name string) error {
	svc, err := m.Get(name)
	if err != nil {
		return err
	}
	var stopErr error
	if svc.IsRunning() {
		stopErr = svc.Stop()
	}
	delete(m.byName, name)
	m.services = slices.DeleteFunc(m.services, func(s *service.Service) bool { return s == svc })
	return stopErr
}

func (m *Manager) Get(name string) (*service.Service, error) {
	svc, ok := m.byName[name]
	if !ok {
		return nil, eris.Wrapf(errs.ErrServiceNotFound, "get %s", name)
	}
	return svc, nil
}

func (m *Manager) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// List returns the services in registration order.
func (m *Manager) List() []*service.Service {
	return slices.Clone(m.services)
}

func (m *Manager) Len() int {
	return len(m.services)
}

// StartAll starts every stopped service on b. If one fails, the services
// started by this call are stopped again and the start error is returned.
func (m *Manager) StartAll(b *bus.Bus) error {
	var started []*service.Service
	for _, svc := range m.services {
		if svc.IsRunning() {
			continue
		}
		if err := svc.Start(b); err != nil {
			m.log.Error("service failed to start, rolling back",
				log.String("service", svc.Name()),
				log.Int("started", len(started)),
				log.Error(err),
			)
			rollback := make([]error, 0, len(started)+1)
			rollback = append(rollback, err)
			for i := len(started) - 1; i >= 0; i-- {
				rollback = append(rollback, started[i].Stop())
			}
			return errors.Join(rollback...)
		}
		started = append(started, svc)
	}
	return nil
}

// StopAll stops every running service in reverse registration order and
// returns all failures joined.
func (m *Manager) StopAll() error {
	var all []error
	for i := len(m.services) - 1; i >= 0; i-- {
		svc := m.services[i]
		if !svc.IsRunning() {
			continue
		}
		if err := svc.Stop(); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
