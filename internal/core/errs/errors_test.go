package errs

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedSentinels(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{eris.Wrapf(ErrDuplicateComponent, "prefab %q", "goblin"), KindInvalidArgument},
		{eris.Wrapf(ErrEntityNotFound, "entity %d", 7), KindNotFound},
		{eris.Wrap(ErrAlreadyCompleted, "complete"), KindStateConflict},
		{eris.Wrap(ErrIDExhausted, "create"), KindResourceExhausted},
		{errors.New("boom"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), "%v", tc.err)
	}
}

func TestIsThroughJoin(t *testing.T) {
	err := errors.Join(errors.New("handler failed"), eris.Wrap(ErrNotCompleted, "query"))
	assert.True(t, Is(err, KindStateConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindStateConflict))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "StateConflict", KindStateConflict.String())
	assert.Equal(t, "Unknown", Kind(42).String())
}
