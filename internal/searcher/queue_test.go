package searcher

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	t.Run("KeepsSmallest", func(t *testing.T) {
		q := NewTopK(3)
		for i, d := range []float32{5, 1, 4, 2, 3, 0.5} {
			q.Push(Candidate{ID: uint64(i), Distance: d})
		}

		worst, ok := q.Worst()
		require.True(t, ok)
		assert.Equal(t, float32(2), worst.Distance)

		got := q.Drain()
		require.Len(t, got, 3)
		assert.Equal(t, []float32{0.5, 1, 2}, []float32{got[0].Distance, got[1].Distance, got[2].Distance})
		assert.Equal(t, []uint64{5, 1, 3}, []uint64{got[0].ID, got[1].ID, got[2].ID})
		assert.Equal(t, 0, q.Len())
	})

	t.Run("FewerThanK", func(t *testing.T) {
		q := NewTopK(10)
		q.Push(Candidate{ID: 1, Distance: 2})
		q.Push(Candidate{ID: 2, Distance: 1})

		got := q.Drain()
		assert.Equal(t, []Candidate{{ID: 2, Distance: 1}, {ID: 1, Distance: 2}}, got)
	})

	t.Run("TiesOrderedByID", func(t *testing.T) {
		q := NewTopK(2)
		q.Push(Candidate{ID: 9, Distance: 1})
		q.Push(Candidate{ID: 3, Distance: 1})
		assert.True(t, q.Push(Candidate{ID: 1, Distance: 1}))
		assert.False(t, q.Push(Candidate{ID: 7, Distance: 1}))

		got := q.Drain()
		assert.Equal(t, []Candidate{{ID: 1, Distance: 1}, {ID: 3, Distance: 1}}, got)
	})

	t.Run("ZeroK", func(t *testing.T) {
		q := NewTopK(0)
		assert.False(t, q.Push(Candidate{ID: 1}))
		_, ok := q.Worst()
		assert.False(t, ok)
		assert.Empty(t, q.Drain())
	})

	t.Run("MatchesSort", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4711))
		all := make([]Candidate, 500)
		q := NewTopK(30)
		for i := range all {
			all[i] = Candidate{ID: uint64(i), Distance: float32(rng.Intn(100))}
			q.Push(all[i])
		}

		slices.SortFunc(all, func(a, b Candidate) int {
			if a.Distance != b.Distance {
				if a.Distance < b.Distance {
					return -1
				}
				return 1
			}
			if a.ID < b.ID {
				return -1
			}
			return 1
		})
		assert.Equal(t, all[:30], q.Drain())
	})
}
