package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/schema/registry"
)

// Prefab is an immutable, named set of components used as a creation
// template. It has no identity of its own.
type Prefab struct {
	name       string
	types      []reflect.Type
	components map[reflect.Type]Component
}

var _ Reader = (*Prefab)(nil)

// NewPrefab validates components against reg and freezes them into a prefab.
// Nil, unregistered and duplicate component types are rejected.
func NewPrefab(reg *registry.Registry, name string, components ...Component) (*Prefab, error) {
	types, err := checkComponents(reg, components)
	if err != nil {
		return nil, eris.Wrapf(err, "prefab %q", name)
	}
	p := &Prefab{
		name:       name,
		types:      types,
		components: make(map[reflect.Type]Component, len(components)),
	}
	for i, t := range types {
		p.components[t] = copyComponent(components[i])
	}
	return p, nil
}

// Extend derives a new prefab from p. Components whose type p already holds
// replace the inherited value; others are appended.
func (p *Prefab) Extend(reg *registry.Registry, name string, overrides ...Component) (*Prefab, error) {
	if _, err := checkComponents(reg, overrides); err != nil {
		return nil, eris.Wrapf(err, "prefab %q", name)
	}
	merged := p.Components()
	index := make(map[reflect.Type]int, len(p.types))
	for i, t := range p.types {
		index[t] = i
	}
	for _, c := range overrides {
		if i, ok := index[reflect.TypeOf(c)]; ok {
			merged[i] = c
			continue
		}
		merged = append(merged, c)
	}
	return NewPrefab(reg, name, merged...)
}

func (p *Prefab) Name() string {
	return p.name
}

// Components returns the prefab's components in declaration order.
func (p *Prefab) Components() []Component {
	out := make([]Component, len(p.types))
	for i, t := range p.types {
		out[i] = copyComponent(p.components[t])
	}
	return out
}

// Types returns the component types in declaration order.
func (p *Prefab) Types() []reflect.Type {
	out := make([]reflect.Type, len(p.types))
	copy(out, p.types)
	return out
}

// Get returns a copy of the component of type t.
func (p *Prefab) Get(t reflect.Type) (Component, bool) {
	c, ok := p.components[t]
	if !ok {
		return nil, false
	}
	return copyComponent(c), true
}

func (p *Prefab) Has(t reflect.Type) bool {
	_, ok := p.components[t]
	return ok
}

func (p *Prefab) Len() int {
	return len(p.types)
}
