package kmeans

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"github.com/hupe1980/searchsimilar/internal/math32"
)

// ErrNotEnoughVectors is returned when fewer vectors than clusters are given.
var ErrNotEnoughVectors = errors.New("kmeans: fewer vectors than clusters")

// Train computes k centroids from vectors using Lloyd's algorithm.
// Initial centroids are drawn from vectors using rng.
func Train(ctx context.Context, vectors [][]float32, k, maxIter int, rng *rand.Rand) ([][]float32, error) {
	n := len(vectors)
	if k <= 0 {
		return nil, errors.New("kmeans: k must be positive")
	}
	if n < k {
		return nil, ErrNotEnoughVectors
	}
	dim := len(vectors[0])

	centroids := make([][]float32, k)
	perm := rng.Perm(n)
	for i := range centroids {
		centroids[i] = append([]float32(nil), vectors[perm[i]]...)
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false

		// Assignment step
		for i, vec := range vectors {
			best := Nearest(vec, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		clear(sums)
		clear(counts)
		for i, vec := range vectors {
			c := assignments[i]
			for d, x := range vec {
				sums[c*dim+d] += x
			}
			counts[c]++
		}

		for j := range centroids {
			if counts[j] == 0 {
				// Re-seed empty clusters with a random point.
				copy(centroids[j], vectors[rng.IntN(n)])
				continue
			}
			scale := 1.0 / float32(counts[j])
			for d := range centroids[j] {
				centroids[j][d] = sums[j*dim+d] * scale
			}
		}
	}

	return centroids, nil
}

// Nearest returns the index of the centroid closest to vec. Ties resolve to
// the lowest index.
func Nearest(vec []float32, centroids [][]float32) int {
	best := -1
	minDist := float32(math.MaxFloat32)
	for j, c := range centroids {
		if d := math32.SquaredL2(vec, c); d < minDist || best < 0 {
			minDist = d
			best = j
		}
	}
	return best
}
