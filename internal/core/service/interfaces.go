package service

// State is the lifecycle state of a Service.
type State uint8

const (
	StateStopped State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Starter is an optional hook on a service's handler object. OnStart runs
// after the handlers are subscribed, in StateStarting. Events it posts are
// staged and flushed to the bus only if it returns nil; Publish and Request
// fail with ErrNotRunning. A failing OnStart undoes the start.
type Starter interface {
	OnStart(svc *Service) error
}

// Stopper is an optional hook on a service's handler object. OnStop runs
// while the service is still running, before its handlers are unsubscribed.
type Stopper interface {
	OnStop(svc *Service) error
}
