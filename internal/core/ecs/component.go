package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/models"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
)

type EntityID = models.EntityID

// Component is any value whose type is registered with the component registry.
// Components are stored by value; at most one per concrete type per entity.
type Component = any

// Cloner is implemented by components holding references (slices, maps).
// Prefabs and the store copy such components whenever they cross the API, so
// every record owns its data exclusively.
type Cloner interface {
	Clone() any
}

// Reader is the read side shared by prefabs and entity views.
type Reader interface {
	Get(t reflect.Type) (Component, bool)
	Has(t reflect.Type) bool
}

// Get returns the component of type T held by r.
func Get[T any](r Reader) (T, bool) {
	c, ok := r.Get(reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := c.(T)
	return v, ok
}

// Has reports whether r holds a component of type T.
func Has[T any](r Reader) bool {
	return r.Has(reflect.TypeFor[T]())
}

func copyComponent(c Component) Component {
	if cl, ok := c.(Cloner); ok {
		return cl.Clone()
	}
	return c
}

// checkComponents validates a component list against reg: no nils, every type
// registered, no type twice. It returns the types in input order.
func checkComponents(reg *registry.Registry, components []Component) ([]reflect.Type, error) {
	types := make([]reflect.Type, 0, len(components))
	seen := make(map[reflect.Type]struct{}, len(components))
	for i, c := range components {
		if c == nil {
			return nil, eris.Wrapf(errs.ErrNilComponent, "component %d", i)
		}
		t := reflect.TypeOf(c)
		if reg == nil || !reg.Contains(t) {
			return nil, eris.Wrapf(errs.ErrUnregisteredComponent, "component %d of type %s", i, t)
		}
		if _, dup := seen[t]; dup {
			return nil, eris.Wrapf(errs.ErrDuplicateComponent, "type %s", t)
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types, nil
}
