package bus

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/pkg/sequence"
)

// Subscription is the token returned by Subscribe. It cancels exactly once.
type Subscription struct {
	id       string
	bindings []Binding
	active   bool
	bus      *Bus
}

func (s *Subscription) ID() string   { return s.id }
func (s *Subscription) Active() bool { return s.active }

// Cancel is shorthand for Unsubscribe on the owning bus.
func (s *Subscription) Cancel() error {
	if s.bus == nil {
		return eris.Wrap(errs.ErrForeignSubscription, "cancel detached subscription")
	}
	return s.bus.Unsubscribe(s)
}

// Bus is a single-threaded publish/subscribe dispatcher with a deferred FIFO
// queue.
//
//   - Post enqueues; PublishPosts drains breadth-first, so events posted by a
//     handler run only after every handler of the current event.
//   - Publish dispatches one event synchronously, bypassing the queue.
//   - Handlers of one event run in subscription order, then binding order.
//     Subscriptions made during a dispatch take effect from the next event.
//   - Plain events: every matching handler runs; failures (including
//     recovered panics) are logged and returned joined.
//   - Requests: the first handler failure stops that request's dispatch and is
//     returned. A request nobody completed yields ErrNotCompleted.
//   - Calling PublishPosts from inside a handler fails with ErrReentrantDrain.
//
// A Bus is owned by one goroutine and has no internal locking.
type Bus struct {
	subs      []*Subscription
	queue     *sequence.Queue[Event]
	draining  bool
	maxDrain  int
	observers []Observer
	metrics   Metrics
	log       log.Log
}

type Option func(*Bus)

func WithLogger(l log.Log) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// WithQueueCapacity preallocates the post queue.
func WithQueueCapacity(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = sequence.NewQueue[Event](n)
		}
	}
}

// WithMaxDrain bounds how many events one PublishPosts call dispatches.
// Zero means unbounded.
func WithMaxDrain(n int) Option {
	return func(b *Bus) {
		if n >= 0 {
			b.maxDrain = n
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		queue: sequence.NewQueue[Event](16),
		log:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe validates every binding of s and registers them as one
// subscription. Nothing is registered if any binding is malformed.
func (b *Bus) Subscribe(s Subscriber) (*Subscription, error) {
	if s == nil {
		return nil, eris.Wrap(errs.ErrInvalidHandler, "nil subscriber")
	}
	bindings := slices.Clone(s.Bindings())
	for i, bd := range bindings {
		if err := bd.validate(); err != nil {
			return nil, eris.Wrapf(err, "binding %d", i)
		}
	}
	sub := &Subscription{
		id:       uuid.NewString(),
		bindings: bindings,
		active:   true,
		bus:      b,
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe removes sub's bindings. A second call fails with
// ErrAlreadyUnsubscribed.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return eris.Wrap(errs.ErrInvalidHandler, "nil subscription")
	}
	if sub.bus != b {
		return eris.Wrapf(errs.ErrForeignSubscription, "subscription %s", sub.id)
	}
	if !sub.active {
		return eris.Wrapf(errs.ErrAlreadyUnsubscribed, "subscription %s", sub.id)
	}
	sub.active = false
	// Build a new slice so that in-flight dispatch snapshots stay intact.
	b.subs = slices.DeleteFunc(slices.Clone(b.subs), func(s *Subscription) bool { return s == sub })
	return nil
}

// Post appends ev to the queue without dispatching it.
func (b *Bus) Post(ev Event) error {
	if err := checkEvent(ev); err != nil {
		return err
	}
	b.queue.Enqueue(ev)
	b.metrics.Posted++
	if n := b.queue.Len(); n > b.metrics.QueueHighWater {
		b.metrics.QueueHighWater = n
	}
	return nil
}

// Publish dispatches ev to every matching handler immediately.
func (b *Bus) Publish(ev Event) error {
	if err := checkEvent(ev); err != nil {
		return err
	}
	return b.dispatch(ev)
}

// PublishPosts drains the queue breadth-first, including events posted while
// draining, and returns every dispatch failure joined.
func (b *Bus) PublishPosts() error {
	if b.draining {
		return eris.Wrap(errs.ErrReentrantDrain, "publish posts")
	}
	b.draining = true
	defer func() { b.draining = false }()

	var all []error
	dispatched := 0
	for !b.queue.IsEmpty() {
		if b.maxDrain > 0 && dispatched >= b.maxDrain {
			all = append(all, eris.Wrapf(errs.ErrDrainLimit, "%d events left after %d", b.queue.Len(), dispatched))
			break
		}
		ev, _ := b.queue.Dequeue()
		dispatched++
		if err := b.dispatch(ev); err != nil {
			all = append(all, err)
		}
	}
	b.metrics.Drains++
	return errors.Join(all...)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return b.queue.Len()
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	return len(b.subs)
}

func (b *Bus) AddObserver(obs Observer) {
	if obs != nil {
		b.observers = append(b.observers, obs)
	}
}

func (b *Bus) RemoveObserver(obs Observer) {
	b.observers = slices.DeleteFunc(slices.Clone(b.observers), func(o Observer) bool { return o == obs })
}

// Metrics returns a snapshot of the bus counters.
func (b *Bus) Metrics() Metrics {
	m := b.metrics
	m.Pending = b.queue.Len()
	m.SubscribersLive = len(b.subs)
	return m
}

func (b *Bus) dispatch(ev Event) error {
	start := time.Now()
	subs := b.subs
	req, isRequest := ev.(completer)

	for _, obs := range b.observers {
		obs.OnPublish(ev)
	}

	delivered := 0
	var failures []error
	var abort error
subscribers:
	for _, sub := range subs {
		for _, bd := range sub.bindings {
			// A handler may cancel a subscription mid-dispatch.
			if !sub.active {
				continue subscribers
			}
			matched, err := b.invoke(bd, ev)
			if !matched {
				continue
			}
			delivered++
			if err == nil {
				continue
			}
			if isRequest {
				abort = eris.Wrapf(err, "request %s", ev.Type())
				b.log.Error("request handler failed",
					log.String("event", ev.Type()),
					log.String("subscription", sub.id),
					log.Error(err),
				)
				break subscribers
			}
			b.log.Warn("event handler failed",
				log.String("event", ev.Type()),
				log.String("subscription", sub.id),
				log.Error(err),
			)
			failures = append(failures, eris.Wrapf(err, "event %s", ev.Type()))
		}
	}

	var result error
	switch {
	case abort != nil:
		result = abort
	case isRequest && !req.Completed():
		result = eris.Wrapf(errs.ErrNotCompleted, "request %s: no handler completed it", ev.Type())
	default:
		result = errors.Join(failures...)
	}

	b.metrics.Dispatched++
	b.metrics.Delivered += uint64(delivered)
	if result != nil {
		b.metrics.Errors++
	}
	if len(b.observers) > 0 {
		took := time.Since(start)
		for _, obs := range b.observers {
			obs.OnDelivered(ev, delivered, result, took)
		}
	}
	return result
}

func (b *Bus) invoke(bd Binding, ev Event) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = true
			err = eris.Wrapf(errs.ErrHandlerPanic, "%v", r)
		}
	}()
	return bd.invoke(ev)
}
