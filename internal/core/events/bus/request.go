package bus

import (
	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
)

// Request is the result slot of a request event. Embed it by value in an
// event struct and publish a pointer to that struct; exactly one handler must
// call Complete while the request is dispatched.
//
//	type PositionQuery struct {
//		bus.Request[Position]
//		ID models.EntityID
//	}
type Request[T any] struct {
	value T
	done  bool
}

// Complete stores the response. A second call fails with ErrAlreadyCompleted.
func (r *Request[T]) Complete(v T) error {
	if r.done {
		return eris.Wrap(errs.ErrAlreadyCompleted, "complete request")
	}
	r.value = v
	r.done = true
	return nil
}

// Get returns the response, or ErrNotCompleted if no handler has completed
// the request yet.
func (r *Request[T]) Get() (T, error) {
	if !r.done {
		var zero T
		return zero, eris.Wrap(errs.ErrNotCompleted, "get request")
	}
	return r.value, nil
}

func (r *Request[T]) Completed() bool {
	return r.done
}

// Requester is satisfied by a pointer to any event embedding Request[T].
type Requester[T any] interface {
	Event
	Get() (T, error)
}

// Ask publishes req immediately and returns its response.
func Ask[T any](b *Bus, req Requester[T]) (T, error) {
	if err := b.Publish(req); err != nil {
		var zero T
		return zero, err
	}
	return req.Get()
}
