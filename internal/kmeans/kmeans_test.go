package kmeans

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrain(t *testing.T) {
	ctx := context.Background()
	// 2 clusters: (0,0) and (10,10)
	vecs := [][]float32{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}

	centroids, err := Train(ctx, vecs, 2, 100, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, centroids, 2)

	p1 := Nearest([]float32{0.5, 0.5}, centroids)
	p2 := Nearest([]float32{10.5, 10.5}, centroids)
	assert.NotEqual(t, p1, p2)

	// Inputs are not aliased.
	centroids[0][0] = 99
	assert.NotEqual(t, float32(99), vecs[0][0])
	assert.NotEqual(t, float32(99), vecs[3][0])
}

func TestTrain_NotEnoughVectors(t *testing.T) {
	_, err := Train(context.Background(), [][]float32{{0, 0}}, 2, 10, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, err, ErrNotEnoughVectors)

	_, err = Train(context.Background(), [][]float32{{0, 0}}, 0, 10, rand.New(rand.NewPCG(1, 2)))
	assert.Error(t, err)
}

func TestTrain_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vecs := make([][]float32, 100)
	for i := range vecs {
		vecs[i] = []float32{float32(i), float32(i)}
	}

	_, err := Train(ctx, vecs, 10, 1000, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNearest(t *testing.T) {
	centroids := [][]float32{{0, 0}, {2, 0}, {2, 0}}
	assert.Equal(t, 0, Nearest([]float32{0.9, 0}, centroids))
	assert.Equal(t, 1, Nearest([]float32{1.5, 0}, centroids))
	assert.Equal(t, 0, Nearest([]float32{1, 0}, centroids))
	assert.Equal(t, -1, Nearest([]float32{1, 0}, nil))
}
