package service

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
)

// Service is a named subscriber with a Stopped -> Running -> Stopped state
// machine. Only a running service may post events or issue requests, and only
// through the bus it was started with.
type Service struct {
	name     string
	handlers bus.Subscriber
	state    State
	bus      *bus.Bus
	sub      *bus.Subscription
	staged   []bus.Event
	log      log.Log
}

type Option func(*Service)

func WithLogger(l log.Log) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a stopped service around handlers. If handlers implements
// Starter or Stopper, the hooks run on Start and Stop.
func New(name string, handlers bus.Subscriber, opts ...Option) *Service {
	s := &Service{
		name:     name,
		handlers: handlers,
		log:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(log.String("service", name))
	return s
}

func (s *Service) Name() string    { return s.name }
func (s *Service) State() State    { return s.state }
func (s *Service) IsRunning() bool { return s.state == StateRunning }

// Start subscribes the service's handlers to b and moves it to Running.
// Events posted by OnStart are held back and reach the bus only if the hook
// succeeds.
func (s *Service) Start(b *bus.Bus) error {
	if s.state != StateStopped {
		return eris.Wrapf(errs.ErrAlreadyRunning, "start %s", s.name)
	}
	if b == nil {
		return eris.Wrapf(errs.ErrNilBus, "start %s", s.name)
	}

	sub, err := b.Subscribe(s.handlers)
	if err != nil {
		return eris.Wrapf(err, "start %s", s.name)
	}
	s.bus, s.sub, s.state = b, sub, StateStarting

	if h, ok := s.handlers.(Starter); ok {
		if err = h.OnStart(s); err != nil {
			dropped := len(s.staged)
			s.detach()
			s.log.Warn("service start hook failed", log.Int("dropped_events", dropped), log.Error(err))
			return eris.Wrapf(err, "start %s", s.name)
		}
	}

	staged := s.staged
	s.staged, s.state = nil, StateRunning
	for _, ev := range staged {
		if err = b.Post(ev); err != nil {
			return eris.Wrapf(err, "start %s: flush staged %s", s.name, ev.Type())
		}
	}

	s.log.Info("service started", log.Int("staged_events", len(staged)))
	return nil
}

// Stop unsubscribes the service's handlers and moves it to Stopped. The
// service ends up stopped even when the OnStop hook fails.
func (s *Service) Stop() error {
	if s.state != StateRunning {
		return eris.Wrapf(errs.ErrNotRunning, "stop %s", s.name)
	}

	var hookErr error
	if h, ok := s.handlers.(Stopper); ok {
		if err := h.OnStop(s); err != nil {
			hookErr = eris.Wrapf(err, "stop %s", s.name)
		}
	}
	err := errors.Join(hookErr, s.detach())
	if err != nil {
		s.log.Warn("service stopped with errors", log.Error(err))
		return err
	}

	s.log.Info("service stopped")
	return nil
}

// Post queues ev on the service's bus. While OnStart runs, ev is validated and
// staged until the start succeeds.
func (s *Service) Post(ev bus.Event) error {
	if s.state == StateStarting {
		if err := bus.CheckEvent(ev); err != nil {
			return err
		}
		s.staged = append(s.staged, ev)
		return nil
	}
	if s.state != StateRunning {
		return eris.Wrapf(errs.ErrNotRunning, "%s: post", s.name)
	}
	return s.bus.Post(ev)
}

// Publish dispatches ev on the service's bus immediately. It is refused while
// OnStart runs, since a dispatch cannot be taken back if the start fails.
func (s *Service) Publish(ev bus.Event) error {
	if s.state != StateRunning {
		return eris.Wrapf(errs.ErrNotRunning, "%s: publish", s.name)
	}
	return s.bus.Publish(ev)
}

// Request publishes req synchronously. req must be a pointer to an event
// embedding bus.Request; read the response from req afterwards. Like Publish,
// it is refused while OnStart runs.
func (s *Service) Request(req bus.Event) error {
	if s.state != StateRunning {
		return eris.Wrapf(errs.ErrNotRunning, "%s: request", s.name)
	}
	if req == nil {
		return eris.Wrapf(errs.ErrNilEvent, "%s: request", s.name)
	}
	if !bus.IsRequest(req) {
		return eris.Wrapf(errs.ErrNotRequest, "%s: request %s", s.name, req.Type())
	}
	return s.bus.Publish(req)
}

// Call issues req through svc and returns its response.
func Call[T any](svc *Service, req bus.Requester[T]) (T, error) {
	if err := svc.Request(req); err != nil {
		var zero T
		return zero, err
	}
	return req.Get()
}

func (s *Service) detach() error {
	var err error
	if s.sub != nil && s.sub.Active() {
		err = s.bus.Unsubscribe(s.sub)
	}
	s.bus, s.sub, s.staged, s.state = nil, nil, nil, StateStopped
	return err
}
