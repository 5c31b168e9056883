package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	t.Run("Ascending", func(t *testing.T) {
		q := NewTopK(3, false)
		for i, d := range []float32{5, 1, 4, 2, 3} {
			q.Push(Item{Offset: uint32(i), Distance: d})
		}
		require.Equal(t, 3, q.Len())

		worst, ok := q.Worst()
		require.True(t, ok)
		assert.Equal(t, float32(3), worst.Distance)

		got := q.Drain()
		assert.Equal(t, []Item{{1, 1}, {3, 2}, {4, 3}}, got)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Descending", func(t *testing.T) {
		q := NewTopK(2, true)
		for i, d := range []float32{5, 1, 4, 2, 3} {
			q.Push(Item{Offset: uint32(i), Distance: d})
		}
		assert.Equal(t, []Item{{0, 5}, {2, 4}}, q.Drain())
	})

	t.Run("TieBreakByOffset", func(t *testing.T) {
		q := NewTopK(3, false)
		for _, off := range []uint32{4, 2, 0, 3, 1} {
			q.Push(Item{Offset: off, Distance: 2})
		}
		assert.Equal(t, []Item{{0, 2}, {1, 2}, {2, 2}}, q.Drain())
	})

	t.Run("FewerThanK", func(t *testing.T) {
		q := NewTopK(10, false)
		q.Push(Item{Offset: 7, Distance: 1})
		assert.Equal(t, []Item{{7, 1}}, q.Drain())
	})

	t.Run("ZeroK", func(t *testing.T) {
		q := NewTopK(0, false)
		q.Push(Item{Offset: 1, Distance: 1})
		assert.Equal(t, 0, q.Len())
		_, ok := q.Worst()
		assert.False(t, ok)
		assert.Empty(t, q.Drain())
	})

	t.Run("Reset", func(t *testing.T) {
		q := NewTopK(1, false)
		q.Push(Item{Offset: 1, Distance: 1})
		q.Reset(2)
		assert.Equal(t, 0, q.Len())
		q.Push(Item{Offset: 2, Distance: 3})
		q.Push(Item{Offset: 3, Distance: 2})
		assert.Equal(t, []Item{{3, 2}, {2, 3}}, q.Drain())
	})
}
