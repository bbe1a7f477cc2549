package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tickcore/internal/core/errs"
)

type position struct{ X, Y int }

type health struct {
	HP  int `json:"hp"`
	Max int `json:"max"`
}

type sprite struct {
	Frames []string
	Layers map[string]int
	Next   *sprite
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, Register[position](r, "position"))
	require.NoError(t, Register[health](r, "health"))

	name, err := r.NameOf(reflect.TypeFor[position]())
	require.NoError(t, err)
	assert.Equal(t, "position", name)

	name, err = r.NameOfValue(health{HP: 3})
	require.NoError(t, err)
	assert.Equal(t, "health", name)

	typ, err := r.TypeOf("health")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[health](), typ)

	assert.Equal(t, 2, r.Len())
	entries := r.Entries()
	assert.Equal(t, "position", entries[0].Name)
	assert.Equal(t, "health", entries[1].Name)
}

func TestIdenticalRegistrationIsNoop(t *testing.T) {
	r := New()
	require.NoError(t, Register[position](r, "position"))
	require.NoError(t, Register[position](r, "position"))
	assert.Equal(t, 1, r.Len())
}

func TestConflictingRegistration(t *testing.T) {
	r := New()
	require.NoError(t, Register[position](r, "position"))

	err := Register[position](r, "pos")
	assert.ErrorIs(t, err, errs.ErrDuplicateRegistration)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))

	err = Register[health](r, "position")
	assert.ErrorIs(t, err, errs.ErrDuplicateRegistration)
	assert.Equal(t, 1, r.Len())
}

func TestInvalidRegistration(t *testing.T) {
	r := New()
	assert.True(t, errs.Is(r.RegisterType(nil, "x"), errs.KindInvalidArgument))
	assert.ErrorIs(t, Register[position](r, ""), errs.ErrInvalidName)
}

func TestUnknownLookups(t *testing.T) {
	r := New()
	_, err := r.NameOf(reflect.TypeFor[position]())
	assert.ErrorIs(t, err, errs.ErrUnknownType)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	_, err = r.TypeOf("position")
	assert.ErrorIs(t, err, errs.ErrUnknownName)

	_, err = r.New("position")
	assert.ErrorIs(t, err, errs.ErrUnknownName)
}

func TestNewReturnsZeroPointer(t *testing.T) {
	r := New()
	require.NoError(t, Register[health](r, "health"))
	v, err := r.New("health")
	require.NoError(t, err)
	h, ok := v.(*health)
	require.True(t, ok)
	assert.Equal(t, health{}, *h)
}

func TestFreeze(t *testing.T) {
	r := New()
	require.NoError(t, Register[position](r, "position"))
	r.Freeze()
	assert.True(t, r.Frozen())

	require.NoError(t, Register[position](r, "position"))
	err := Register[health](r, "health")
	assert.ErrorIs(t, err, errs.ErrRegistryFrozen)
	assert.Equal(t, errs.KindStateConflict, errs.KindOf(err))
}

func TestFingerprint(t *testing.T) {
	r := New()
	require.NoError(t, Register[position](r, "position"))
	require.NoError(t, Register[health](r, "health"))
	require.NoError(t, Register[sprite](r, "sprite"))

	fpPos, err := r.Fingerprint("position")
	require.NoError(t, err)
	fpHealth, err := r.Fingerprint("health")
	require.NoError(t, err)
	assert.NotEqual(t, fpPos, fpHealth)
	assert.Equal(t, fpPos, fingerprint(reflect.TypeFor[position]()))

	require.NoError(t, r.Verify("health", fpHealth))
	assert.ErrorIs(t, r.Verify("health", fpPos), errs.ErrSchemaMismatch)
	assert.ErrorIs(t, r.Verify("missing", fpPos), errs.ErrUnknownName)
}

func TestBuilderAndGlobalInit(t *testing.T) {
	b := NewBuilder().Register(position{}, "position")
	Add[health](b, "health")

	built, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, built.Len())
	assert.False(t, built.Frozen())

	_, err = NewBuilder().Register(position{}, "a").Register(position{}, "b").Build()
	assert.ErrorIs(t, err, errs.ErrDuplicateRegistration)

	assert.Nil(t, Global())
	g, err := Init(b)
	require.NoError(t, err)
	assert.Same(t, g, Global())
	assert.True(t, g.Frozen())

	// Same entries again: idempotent.
	again, err := Init(NewBuilder().Merge(b))
	require.NoError(t, err)
	assert.Same(t, g, again)

	// New entries after startup are rejected.
	_, err = Init(NewBuilder().Register(sprite{}, "sprite"))
	assert.ErrorIs(t, err, errs.ErrRegistryFrozen)
}
