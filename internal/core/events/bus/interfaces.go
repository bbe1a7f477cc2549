package bus

import (
	"reflect"
	"time"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
)

// Event is an immutable message transported by the Bus.
//
// Type is a stable label used in logs and metrics only; routing is by the
// event's Go type. Handlers bound to a concrete type receive exactly that type;
// handlers bound to an interface receive every event implementing it, so
// On[Event] receives everything. Events should be treated as read-only by
// handlers.
type Event interface {
	Type() string
}

// Subscriber exposes a bundle of typed handler bindings.
type Subscriber interface {
	Bindings() []Binding
}

// Handlers is a ready-made Subscriber backed by a slice.
type Handlers []Binding

func (h Handlers) Bindings() []Binding { return h }

// Binding ties one handler to one event type. Build bindings with On.
type Binding struct {
	eventType reflect.Type
	invoke    func(Event) (bool, error)
	err       error
}

// completer is implemented by *Request[T] and anything embedding it.
type completer interface {
	Completed() bool
}

var completerType = reflect.TypeFor[completer]()

// IsRequest reports whether ev carries a Request result slot.
func IsRequest(ev Event) bool {
	_, ok := ev.(completer)
	return ok
}

// On binds handler to events of type E. E may be a concrete event type or an
// interface; request events must be taken by pointer. Problems with the
// binding are reported by Subscribe.
func On[E Event](handler func(E) error) Binding {
	t := reflect.TypeFor[E]()
	b := Binding{eventType: t}
	switch {
	case handler == nil:
		b.err = eris.Wrapf(errs.ErrInvalidHandler, "nil handler for %s", t)
		return b
	case t.Kind() != reflect.Interface && !t.Implements(completerType) && reflect.PointerTo(t).Implements(completerType):
		b.err = eris.Wrapf(errs.ErrInvalidHandler, "request %s must be handled as *%s", t, t.Name())
		return b
	}
	b.invoke = func(ev Event) (bool, error) {
		e, ok := ev.(E)
		if !ok {
			return false, nil
		}
		return true, handler(e)
	}
	return b
}

// EventType returns the Go type the binding is keyed on.
func (b Binding) EventType() reflect.Type {
	return b.eventType
}

func (b Binding) validate() error {
	if b.err != nil {
		return b.err
	}
	if b.invoke == nil {
		return eris.Wrap(errs.ErrInvalidHandler, "zero binding")
	}
	return nil
}

// Observer is notified about every dispatch. Observers run on the dispatching
// goroutine and should return quickly.
type Observer interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error, took time.Duration)
}

// Metrics is a snapshot of bus counters.
type Metrics struct {
	Posted          uint64
	Dispatched      uint64
	Delivered       uint64
	Errors          uint64
	Drains          uint64
	QueueHighWater  int
	Pending         int
	SubscribersLive int
}

// CheckEvent reports whether Post would accept ev.
func CheckEvent(ev Event) error {
	return checkEvent(ev)
}

func checkEvent(ev Event) error {
	if ev == nil {
		return eris.Wrap(errs.ErrNilEvent, "check event")
	}
	v := reflect.ValueOf(ev)
	t := v.Type()
	if t.Kind() == reflect.Pointer && v.IsNil() {
		return eris.Wrapf(errs.ErrNilEvent, "nil %s", t)
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(completerType) {
		return eris.Wrapf(errs.ErrRequestByValue, "%s", ev.Type())
	}
	return nil
}
