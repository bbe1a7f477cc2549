package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOAcrossGrowth(t *testing.T) {
	q := NewQueue[int](2)
	for i := 0; i < 3; i++ {
		q.Enqueue(i)
	}
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	// Wrap the ring, then force growth while wrapped.
	for i := 3; i < 10; i++ {
		q.Enqueue(i)
	}
	assert.Equal(t, 9, q.Len())

	front, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, front)

	for want := 1; want < 10; want++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	assert.True(t, q.IsEmpty())
	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[string](0)
	q.Enqueue("a")
	q.Enqueue("b")
	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Peek()
	assert.False(t, ok)

	q.Enqueue("c")
	v, _ := q.Dequeue()
	assert.Equal(t, "c", v)
}
