package ecs

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
)

// View is a read-only handle on one entity. It resolves the entity on every
// call, so a view of a removed entity simply finds nothing.
type View struct {
	store *Store
	id    EntityID
}

var _ Reader = View{}

func (v View) ID() EntityID {
	return v.id
}

// Exists reports whether the entity is still in the store.
func (v View) Exists() bool {
	if v.store == nil {
		return false
	}
	return v.store.Contains(v.id)
}

// Get returns a copy of the entity's component of type t. Writes to the copy
// do not reach the store; use Mutable.Set.
func (v View) Get(t reflect.Type) (Component, bool) {
	rec, ok := v.rec()
	if !ok {
		return nil, false
	}
	c, ok := rec.components[t]
	if !ok {
		return nil, false
	}
	return copyComponent(c), true
}

func (v View) Has(t reflect.Type) bool {
	rec, ok := v.rec()
	if !ok {
		return false
	}
	_, ok = rec.components[t]
	return ok
}

func (v View) Len() int {
	rec, ok := v.rec()
	if !ok {
		return 0
	}
	return len(rec.components)
}

// Components returns copies of the entity's components ordered by registered
// name.
func (v View) Components() []Component {
	rec, ok := v.rec()
	if !ok {
		return nil
	}
	out := make([]Component, 0, len(rec.components))
	for _, c := range rec.components {
		out = append(out, copyComponent(c))
	}
	sort.Slice(out, func(i, j int) bool {
		return v.nameOf(out[i]) < v.nameOf(out[j])
	})
	return out
}

func (v View) nameOf(c Component) string {
	if v.store.reg == nil {
		return reflect.TypeOf(c).String()
	}
	name, err := v.store.reg.NameOfValue(c)
	if err != nil {
		return reflect.TypeOf(c).String()
	}
	return name
}

func (v View) rec() (*record, bool) {
	if v.store == nil {
		return nil, false
	}
	return v.store.record(v.id)
}

// Mutable is a View that can also change the entity's components.
type Mutable struct {
	View
}

// Set inserts a copy of c, replacing any component of the same concrete type.
func (m Mutable) Set(c Component) error {
	if c == nil {
		return eris.Wrapf(errs.ErrNilComponent, "set on entity %d", m.id)
	}
	t := reflect.TypeOf(c)
	if m.store == nil || m.store.reg == nil || !m.store.reg.Contains(t) {
		return eris.Wrapf(errs.ErrUnregisteredComponent, "set %s on entity %d", t, m.id)
	}
	rec, ok := m.rec()
	if !ok {
		return eris.Wrapf(errs.ErrEntityNotFound, "set %s on entity %d", t, m.id)
	}
	rec.components[t] = copyComponent(c)
	return nil
}

// Remove detaches the component of type t and returns it.
func (m Mutable) Remove(t reflect.Type) (Component, bool) {
	rec, ok := m.rec()
	if !ok {
		return nil, false
	}
	c, ok := rec.components[t]
	if ok {
		delete(rec.components, t)
	}
	return c, ok
}

// RemoveComponent detaches and returns the component of type T.
func RemoveComponent[T any](m Mutable) (T, bool) {
	var zero T
	c, ok := m.Remove(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	v, ok := c.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
