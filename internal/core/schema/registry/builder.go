package registry

import (
	"reflect"
	"sync"

	"github.com/rotisserie/eris"
)

// Builder collects registrations so the process registry can be populated in
// one explicit step at startup.
type Builder struct {
	steps []step
}

type step struct {
	typ  reflect.Type
	name string
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Register queues the dynamic type of sample under name.
func (b *Builder) Register(sample any, name string) *Builder {
	b.steps = append(b.steps, step{typ: reflect.TypeOf(sample), name: name})
	return b
}

// Add queues T under name.
func Add[T any](b *Builder, name string) *Builder {
	b.steps = append(b.steps, step{typ: reflect.TypeFor[T](), name: name})
	return b
}

// Merge appends every registration queued on other.
func (b *Builder) Merge(other *Builder) *Builder {
	if other != nil {
		b.steps = append(b.steps, other.steps...)
	}
	return b
}

// ApplyTo registers every queued entry into r, stopping at the first failure.
func (b *Builder) ApplyTo(r *Registry) error {
	for _, s := range b.steps {
		if err := r.RegisterType(s.typ, s.name); err != nil {
			return err
		}
	}
	return nil
}

// Build returns a new registry holding every queued entry.
func (b *Builder) Build() (*Registry, error) {
	r := New()
	if err := b.ApplyTo(r); err != nil {
		return nil, err
	}
	return r, nil
}

var (
	global     *Registry
	globalErr  error
	globalOnce sync.Once
)

// Init installs the process-wide registry from b and freezes it. Only the
// first call builds; later calls re-apply b to the frozen registry, which
// succeeds only if every entry is already registered identically.
func Init(b *Builder) (*Registry, error) {
	first := false
	globalOnce.Do(func() {
		first = true
		global, globalErr = b.Build()
		if globalErr == nil {
			global.Freeze()
		}
	})
	if globalErr != nil {
		return nil, eris.Wrap(globalErr, "init component registry")
	}
	if !first {
		if err := b.ApplyTo(global); err != nil {
			return nil, err
		}
	}
	return global, nil
}

// Global returns the registry installed by Init, or nil before Init.
func Global() *Registry {
	return global
}
