// Package indextest writes small databases for tests and local experiments.
package indextest

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/hupe1980/searchsimilar/index"
	"github.com/hupe1980/searchsimilar/internal/kmeans"
)

// ContentIDAttribute is the attribute name written by Random.
const ContentIDAttribute = "content_id"

// Item is a vector to store.
type Item struct {
	ID         uint64
	Vector     []float32
	Attributes map[string]index.AttributeValue
}

// Options configures Build.
type Options struct {
	// Compression used for partition blobs. Defaults to CompressionNone.
	Compression index.Compression
	// BlobPattern formats partition blob names from the partition index and
	// the blob kind ("vec" or "attr"). Defaults to "partition-%04d.%s".
	BlobPattern string
}

// Build assigns every item to its nearest centroid and writes the header and
// partition blobs into store. It returns the header it wrote.
func Build(ctx context.Context, store blobstore.Putter, headerName string, attributeNames []string, centroids [][]float32, items []Item, optFns ...func(*Options)) (*index.Header, error) {
	opts := Options{
		Compression: index.CompressionNone,
		BlobPattern: "partition-%04d.%s",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(centroids) == 0 {
		return nil, fmt.Errorf("indextest: at least one centroid is required")
	}
	dim := len(centroids[0])

	members := make([][]Item, len(centroids))
	for _, it := range items {
		if len(it.Vector) != dim {
			return nil, &index.ErrDimensionMismatch{Expected: dim, Actual: len(it.Vector)}
		}
		best := kmeans.Nearest(it.Vector, centroids)
		members[best] = append(members[best], it)
	}

	h := &index.Header{
		Dim:            dim,
		Compression:    opts.Compression,
		AttributeNames: attributeNames,
		Partitions:     make([]index.PartitionInfo, len(centroids)),
	}

	for pid, part := range members {
		ids := make([]uint64, len(part))
		vectors := make([]float32, 0, len(part)*dim)
		rows := make([][]index.AttributeValue, len(part))
		for i, it := range part {
			ids[i] = it.ID
			vectors = append(vectors, it.Vector...)
			rows[i] = make([]index.AttributeValue, len(attributeNames))
			for col, name := range attributeNames {
				rows[i][col] = it.Attributes[name]
			}
		}

		vecBlob, err := index.EncodeVectorBlob(ids, vectors, dim, opts.Compression)
		if err != nil {
			return nil, err
		}
		attrBlob, err := index.EncodeAttributeBlob(rows, len(attributeNames), opts.Compression)
		if err != nil {
			return nil, err
		}

		info := index.PartitionInfo{
			Centroid:       centroids[pid],
			Count:          uint32(len(part)),
			VectorsBlob:    fmt.Sprintf(opts.BlobPattern, pid, "vec"),
			AttributesBlob: fmt.Sprintf(opts.BlobPattern, pid, "attr"),
		}
		if err := store.Put(ctx, info.VectorsBlob, vecBlob); err != nil {
			return nil, err
		}
		if err := store.Put(ctx, info.AttributesBlob, attrBlob); err != nil {
			return nil, err
		}
		h.Partitions[pid] = info
	}

	data, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, headerName, data); err != nil {
		return nil, err
	}
	return h, nil
}

// RandomVectors returns n vectors of dimension dim with components in [0, 1).
func RandomVectors(n, dim int, seed uint64) [][]float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		out[i] = v
	}
	return out
}

// trainIterations bounds k-means when Random derives centroids.
const trainIterations = 10

// Random writes a database of n random vectors spread over the given number of
// partitions. Centroids are trained with k-means when there are at least as
// many vectors as partitions. Item i has id i and content_id "content-<i>".
func Random(ctx context.Context, store blobstore.Putter, headerName string, n, dim, partitions int, seed uint64, optFns ...func(*Options)) ([]Item, error) {
	vectors := RandomVectors(n, dim, seed)
	items := make([]Item, n)
	for i, v := range vectors {
		items[i] = Item{
			ID:     uint64(i),
			Vector: v,
			Attributes: map[string]index.AttributeValue{
				ContentIDAttribute: index.StringValue(fmt.Sprintf("content-%d", i)),
			},
		}
	}

	centroids := RandomVectors(partitions, dim, seed+1)
	if n >= partitions && partitions > 0 {
		rng := rand.New(rand.NewPCG(seed+1, seed^0x9e3779b97f4a7c15))
		trained, err := kmeans.Train(ctx, vectors, partitions, trainIterations, rng)
		if err != nil {
			return nil, err
		}
		centroids = trained
	}
	if _, err := Build(ctx, store, headerName, []string{ContentIDAttribute}, centroids, items, optFns...); err != nil {
		return nil, err
	}
	return items, nil
}
