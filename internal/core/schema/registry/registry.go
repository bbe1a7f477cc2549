package registry

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/errs"
)

// Entry describes one registered component type.
type Entry struct {
	Name        string
	Type        reflect.Type
	Fingerprint uint64
}

// Registry maps component Go types to stable names. It is append-only and
// meant to be fully populated before any store or codec uses it; it has no
// internal locking.
type Registry struct {
	byType map[reflect.Type]*Entry
	byName map[string]*Entry
	order  []*Entry
	frozen bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Entry),
		byName: make(map[string]*Entry),
	}
}

// Register binds the component type T to name.
func Register[T any](r *Registry, name string) error {
	return r.RegisterType(reflect.TypeFor[T](), name)
}

// RegisterType binds t to name. Registering the same (type, name) pair again is
// a no-op; any other overlap with an existing entry is ErrDuplicateRegistration.
func (r *Registry) RegisterType(t reflect.Type, name string) error {
	if t == nil {
		return eris.Wrap(errs.ErrNilComponent, "register nil type")
	}
	if name == "" {
		return eris.Wrapf(errs.ErrInvalidName, "empty name for %s", t)
	}

	fp := fingerprint(t)
	byType, typeKnown := r.byType[t]
	byName, nameKnown := r.byName[name]

	if typeKnown && byType.Name == name && byType.Fingerprint == fp {
		return nil
	}
	if typeKnown {
		return eris.Wrapf(errs.ErrDuplicateRegistration, "type %s already registered as %q", t, byType.Name)
	}
	if nameKnown {
		return eris.Wrapf(errs.ErrDuplicateRegistration, "name %q already bound to %s", name, byName.Type)
	}
	if r.frozen {
		return eris.Wrapf(errs.ErrRegistryFrozen, "register %q", name)
	}

	e := &Entry{Name: name, Type: t, Fingerprint: fp}
	r.byType[t] = e
	r.byName[name] = e
	r.order = append(r.order, e)
	return nil
}

// NameOf returns the name registered for t.
func (r *Registry) NameOf(t reflect.Type) (string, error) {
	e, ok := r.byType[t]
	if !ok {
		return "", eris.Wrapf(errs.ErrUnknownType, "type %v", t)
	}
	return e.Name, nil
}

// NameOfValue returns the name registered for the dynamic type of v.
func (r *Registry) NameOfValue(v any) (string, error) {
	return r.NameOf(reflect.TypeOf(v))
}

// TypeOf returns the type registered under name.
func (r *Registry) TypeOf(name string) (reflect.Type, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, eris.Wrapf(errs.ErrUnknownName, "name %q", name)
	}
	return e.Type, nil
}

// Contains reports whether t is registered.
func (r *Registry) Contains(t reflect.Type) bool {
	_, ok := r.byType[t]
	return ok
}

// New returns a pointer to a fresh zero value of the type registered under
// name, ready for a decoder to fill in.
func (r *Registry) New(name string) (any, error) {
	t, err := r.TypeOf(name)
	if err != nil {
		return nil, err
	}
	return reflect.New(t).Interface(), nil
}

// Fingerprint returns the structural hash of the type registered under name.
func (r *Registry) Fingerprint(name string) (uint64, error) {
	e, ok := r.byName[name]
	if !ok {
		return 0, eris.Wrapf(errs.ErrUnknownName, "name %q", name)
	}
	return e.Fingerprint, nil
}

// Verify checks that data written with the given fingerprint still matches the
// registered shape of name.
func (r *Registry) Verify(name string, fp uint64) error {
	want, err := r.Fingerprint(name)
	if err != nil {
		return err
	}
	if want != fp {
		return eris.Wrapf(errs.ErrSchemaMismatch, "component %q: stored %x, registered %x", name, fp, want)
	}
	return nil
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.order))
	for i, e := range r.order {
		out[i] = *e
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Freeze rejects any further new registrations. Identical re-registration is
// still accepted.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// fingerprint hashes the shape of t: its name, kind and, for structs, every
// field name, type and tag in declaration order.
func fingerprint(t reflect.Type) uint64 {
	var sb strings.Builder
	describe(&sb, t, 0)
	return xxhash.Sum64String(sb.String())
}

const maxDescribeDepth = 8

func describe(sb *strings.Builder, t reflect.Type, depth int) {
	sb.WriteString(t.String())
	sb.WriteByte('|')
	sb.WriteString(t.Kind().String())
	if depth >= maxDescribeDepth {
		return
	}
	switch t.Kind() {
	case reflect.Struct:
		sb.WriteByte('{')
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			describe(sb, f.Type, depth+1)
			if f.Tag != "" {
				sb.WriteString(strconv.Quote(string(f.Tag)))
			}
			sb.WriteByte(';')
		}
		sb.WriteByte('}')
	case reflect.Array:
		sb.WriteString(strconv.Itoa(t.Len()))
		fallthrough
	case reflect.Slice, reflect.Pointer:
		sb.WriteByte('<')
		describe(sb, t.Elem(), depth+1)
		sb.WriteByte('>')
	case reflect.Map:
		sb.WriteByte('<')
		describe(sb, t.Key(), depth+1)
		sb.WriteByte(',')
		describe(sb, t.Elem(), depth+1)
		sb.WriteByte('>')
	default:
	}
}
