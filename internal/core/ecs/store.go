package ecs

import (
	"iter"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
)

type record struct {
	components map[reflect.Type]Component
}

// Store owns every entity and its components. It is not safe for concurrent
// use; one tick goroutine owns it.
type Store struct {
	reg     *registry.Registry
	records map[EntityID]*record
	last    EntityID
	maxID   EntityID
	log     log.Log
}

type Option func(*Store)

// WithLogger sets the logger used for entity lifecycle debug output.
func WithLogger(l log.Log) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCapacity preallocates room for n entities.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.records = make(map[EntityID]*record, n)
		}
	}
}

// WithMaxID caps the identity counter; Create fails once id would pass max.
func WithMaxID(limit EntityID) Option {
	return func(s *Store) {
		if limit > 0 {
			s.maxID = limit
		}
	}
}

// NewStore creates an empty store validating components against reg.
func NewStore(reg *registry.Registry, opts ...Option) *Store {
	s := &Store{
		reg:     reg,
		records: make(map[EntityID]*record),
		maxID:   math.MaxUint64,
		log:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the store validates against.
func (s *Store) Registry() *registry.Registry {
	return s.reg
}

// Create allocates the next id and copies p's components into a new entity.
func (s *Store) Create(p *Prefab) (EntityID, error) {
	if p == nil {
		return 0, eris.Wrap(errs.ErrNilPrefab, "create entity")
	}
	// p may have been validated against another registry.
	for _, t := range p.types {
		if s.reg == nil || !s.reg.Contains(t) {
			return 0, eris.Wrapf(errs.ErrUnregisteredComponent, "create from prefab %q: type %s", p.name, t)
		}
	}
	return s.insert(p.types, p.components, p.name)
}

// CreateFrom creates an entity from an anonymous prefab of components.
func (s *Store) CreateFrom(components ...Component) (EntityID, error) {
	p, err := NewPrefab(s.reg, "", components...)
	if err != nil {
		return 0, err
	}
	return s.insert(p.types, p.components, "")
}

func (s *Store) insert(types []reflect.Type, components map[reflect.Type]Component, prefab string) (EntityID, error) {
	if s.last >= s.maxID {
		return 0, eris.Wrapf(errs.ErrIDExhausted, "last id %d", s.last)
	}
	s.last++
	id := s.last

	rec := &record{components: make(map[reflect.Type]Component, len(types))}
	for _, t := range types {
		rec.components[t] = copyComponent(components[t])
	}
	s.records[id] = rec

	s.log.Debug("entity created",
		log.Uint64("entity_id", uint64(id)),
		log.String("prefab", prefab),
		log.Int("components", len(types)),
	)
	return id, nil
}

// Remove deletes the entity if present and reports whether it existed.
func (s *Store) Remove(id EntityID) bool {
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	s.log.Debug("entity removed", log.Uint64("entity_id", uint64(id)))
	return true
}

// Get returns a read-only view of id.
func (s *Store) Get(id EntityID) (View, bool) {
	if _, ok := s.records[id]; !ok {
		return View{}, false
	}
	return View{store: s, id: id}, true
}

// GetMutable returns a writable view of id.
func (s *Store) GetMutable(id EntityID) (Mutable, bool) {
	v, ok := s.Get(id)
	if !ok {
		return Mutable{}, false
	}
	return Mutable{View: v}, true
}

func (s *Store) Contains(id EntityID) bool {
	_, ok := s.records[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.records)
}

// Entities yields live entity ids in ascending order.
func (s *Store) Entities() iter.Seq[EntityID] {
	ids := slices.Sorted(maps.Keys(s.records))
	return slices.Values(ids)
}

// Query returns, in ascending order, every entity holding all of the given
// component types. No types matches every entity.
func (s *Store) Query(types ...reflect.Type) []EntityID {
	var out []EntityID
	for id := range s.Entities() {
		rec := s.records[id]
		match := true
		for _, t := range types {
			if _, ok := rec.components[t]; !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) record(id EntityID) (*record, bool) {
	rec, ok := s.records[id]
	return rec, ok
}
