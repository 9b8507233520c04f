package indextest

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/searchsimilar/internal/math32"
)

// Neighbor is an exact search result.
type Neighbor struct {
	ID              uint64
	SquaredDistance float32
}

// BruteForce returns the k items nearest to query by squared L2 distance.
// Ties resolve to the lower id.
func BruteForce(items []Item, query []float32, k int) []Neighbor {
	out := make([]Neighbor, len(items))
	for i, it := range items {
		out[i] = Neighbor{ID: it.ID, SquaredDistance: math32.SquaredL2(query, it.Vector)}
	}

	slices.SortFunc(out, func(a, b Neighbor) int {
		if c := cmp.Compare(a.SquaredDistance, b.SquaredDistance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Recall returns the fraction of truth ids present in got.
func Recall(truth []Neighbor, got []uint64) float64 {
	if len(truth) == 0 {
		if len(got) == 0 {
			return 1.0
		}
		return 0.0
	}

	set := make(map[uint64]struct{}, len(truth))
	for _, n := range truth {
		set[n.ID] = struct{}{}
	}

	hits := 0
	for _, id := range got {
		if _, ok := set[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// ClusteredVectors returns n vectors grouped around the given number of
// random centers, with Gaussian noise of the given spread.
func ClusteredVectors(n, dim, clusters int, spread float32, seed uint64) [][]float32 {
	centers := RandomVectors(clusters, dim, seed)
	rng := rand.New(rand.NewPCG(seed+1, seed^0x9e3779b97f4a7c15))

	data := make([]float32, n*dim)
	out := make([][]float32, n)
	for i := range out {
		center := centers[i%clusters]
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = center[j] + float32(rng.NormFloat64())*spread
		}
		out[i] = vec
	}
	return out
}
