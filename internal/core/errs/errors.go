package errs

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Core errors
var (
	// Registry errors

	ErrDuplicateRegistration = eris.New("duplicate component registration")
	ErrUnknownType           = eris.New("unknown component type")
	ErrUnknownName           = eris.New("unknown component name")
	ErrRegistryFrozen        = eris.New("component registry is frozen")
	ErrSchemaMismatch        = eris.New("component schema mismatch")
	ErrInvalidName           = eris.New("invalid component name")

	// Entity errors

	ErrDuplicateComponent    = eris.New("duplicate component type")
	ErrUnregisteredComponent = eris.New("component type not registered")
	ErrNilComponent          = eris.New("nil component")
	ErrNilPrefab             = eris.New("nil prefab")
	ErrEntityNotFound        = eris.New("entity not found")
	ErrComponentNotFound     = eris.New("component not found on entity")
	ErrIDExhausted           = eris.New("entity id space exhausted")

	// Bus errors

	ErrNilEvent            = eris.New("nil event")
	ErrRequestByValue      = eris.New("request passed by value")
	ErrForeignSubscription = eris.New("subscription belongs to another bus")
	ErrInvalidHandler      = eris.New("invalid handler")
	ErrAlreadyUnsubscribed = eris.New("subscription already cancelled")
	ErrReentrantDrain      = eris.New("queue drain re-entered from a handler")
	ErrDrainLimit          = eris.New("drain limit exceeded")
	ErrHandlerPanic        = eris.New("handler panicked")

	// Request errors

	ErrNotRequest       = eris.New("event is not a request")
	ErrAlreadyCompleted = eris.New("request already completed")
	ErrNotCompleted     = eris.New("request not completed")

	// Service errors

	ErrAlreadyRunning   = eris.New("service already running")
	ErrNotRunning       = eris.New("service not running")
	ErrNilBus           = eris.New("nil bus")
	ErrDuplicateService = eris.New("service already registered")
	ErrServiceNotFound  = eris.New("service not found")

	// Configuration errors

	ErrInvalidConfig = eris.New("invalid configuration")
)

// Kind classifies an error by how a caller is expected to react to it.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindStateConflict
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindStateConflict:
		return "StateConflict"
	case KindResourceExhausted:
		return "ResourceExhausted"
	default:
		return "Unknown"
	}
}

type kindEntry struct {
	err  error
	kind Kind
}

// Checked in order; the first sentinel found in the chain wins.
var kindTable = []kindEntry{
	{ErrDuplicateRegistration, KindInvalidArgument},
	{ErrSchemaMismatch, KindInvalidArgument},
	{ErrInvalidName, KindInvalidArgument},
	{ErrDuplicateComponent, KindInvalidArgument},
	{ErrUnregisteredComponent, KindInvalidArgument},
	{ErrNilComponent, KindInvalidArgument},
	{ErrNilPrefab, KindInvalidArgument},
	{ErrNilEvent, KindInvalidArgument},
	{ErrRequestByValue, KindInvalidArgument},
	{ErrForeignSubscription, KindInvalidArgument},
	{ErrInvalidHandler, KindInvalidArgument},
	{ErrNotRequest, KindInvalidArgument},
	{ErrNilBus, KindInvalidArgument},
	{ErrDuplicateService, KindInvalidArgument},
	{ErrInvalidConfig, KindInvalidArgument},

	{ErrUnknownType, KindNotFound},
	{ErrUnknownName, KindNotFound},
	{ErrEntityNotFound, KindNotFound},
	{ErrComponentNotFound, KindNotFound},
	{ErrServiceNotFound, KindNotFound},

	{ErrRegistryFrozen, KindStateConflict},
	{ErrAlreadyUnsubscribed, KindStateConflict},
	{ErrReentrantDrain, KindStateConflict},
	{ErrAlreadyCompleted, KindStateConflict},
	{ErrNotCompleted, KindStateConflict},
	{ErrAlreadyRunning, KindStateConflict},
	{ErrNotRunning, KindStateConflict},

	{ErrIDExhausted, KindResourceExhausted},
	{ErrDrainLimit, KindResourceExhausted},
}

// KindOf returns the kind of the first known sentinel wrapped by err.
// Handler failures that carry no core sentinel report KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindUnknown
}

// Is reports whether err (or anything it wraps) is of the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	for _, e := range kindTable {
		if e.kind == kind && errors.Is(err, e.err) {
			return true
		}
	}
	return false
}
