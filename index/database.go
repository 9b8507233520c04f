package index

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/hupe1980/searchsimilar/internal/math32"
	"github.com/hupe1980/searchsimilar/internal/resource"
	"github.com/hupe1980/searchsimilar/internal/searcher"
)

// Options configures a Database.
type Options struct {
	// Controller limits memory, concurrent reads and IO throughput.
	// If nil, nothing is limited.
	Controller *resource.Controller

	// Logger receives debug output about blob loads. If nil, logs are discarded.
	Logger *slog.Logger
}

// WithController sets the resource controller.
func WithController(rc *resource.Controller) func(*Options) {
	return func(o *Options) {
		o.Controller = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// Hit is a single query result.
type Hit struct {
	// Partition is the index of the partition holding the vector.
	Partition int
	// Row is the position of the vector inside its partition.
	Row int
	// VectorID is the id stored with the vector.
	VectorID uint64
	// SquaredDistance is the squared L2 distance to the query vector.
	SquaredDistance float32
}

// Database is an opened partitioned vector database.
type Database struct {
	store  blobstore.BlobStore
	header *Header
	rc     *resource.Controller
	logger *slog.Logger

	mu      sync.Mutex
	vectors map[int]*vectorPartition
	attrs   map[int]*attributeTable

	loads    singleflight.Group
	reserved atomic.Int64
	closed   atomic.Bool
}

// Open reads and validates the header blob. Partition blobs are loaded on demand.
func Open(ctx context.Context, store blobstore.BlobStore, headerName string, optFns ...func(*Options)) (*Database, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	db := &Database{
		store:   store,
		rc:      opts.Controller,
		logger:  opts.Logger,
		vectors: make(map[int]*vectorPartition),
		attrs:   make(map[int]*attributeTable),
	}

	data, err := db.readBlob(ctx, headerName)
	if err != nil {
		return nil, fmt.Errorf("read header %q: %w", headerName, err)
	}

	h, err := UnmarshalHeader(data)
	if err != nil {
		return nil, fmt.Errorf("header %q: %w", headerName, err)
	}
	db.header = h

	db.logger.Debug("opened database",
		"header", headerName,
		"dim", h.Dim,
		"partitions", len(h.Partitions),
		"compression", h.Compression.String(),
	)
	return db, nil
}

// Dim returns the vector dimensionality.
func (db *Database) Dim() int {
	return db.header.Dim
}

// NumPartitions returns the number of partitions.
func (db *Database) NumPartitions() int {
	return len(db.header.Partitions)
}

// AttributeNames returns the attribute names declared by the header.
func (db *Database) AttributeNames() []string {
	return slices.Clone(db.header.AttributeNames)
}

// MemoryUsage returns the bytes of decoded partition data held by the database.
func (db *Database) MemoryUsage() int64 {
	return db.reserved.Load()
}

// Query returns up to k hits nearest to vector, searching the nprobe
// partitions whose centroids are nearest. Hits are ordered by ascending
// squared distance; equal distances are ordered by partition, then row.
func (db *Database) Query(ctx context.Context, vector []float32, k, nprobe int) ([]Hit, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	if len(vector) != db.header.Dim {
		return nil, &ErrDimensionMismatch{Expected: db.header.Dim, Actual: len(vector)}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if nprobe <= 0 {
		return nil, ErrInvalidNProbe
	}

	probes := db.rankPartitions(vector, nprobe)
	parts := make([]*vectorPartition, len(probes))
	results := make([][]searcher.Candidate, len(probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, pid := range probes {
		g.Go(func() error {
			part, err := db.loadVectors(gctx, pid)
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = part
			results[i] = scanPartition(part, pid, vector, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]*vectorPartition, len(probes))
	for i, pid := range probes {
		byID[pid] = parts[i]
	}

	top := searcher.NewTopK(k)
	for _, cands := range results {
		for _, c := range cands {
			top.Push(c)
		}
	}

	best := top.Drain()
	hits := make([]Hit, len(best))
	for i, c := range best {
		pid, row := unpackCandidateID(c.ID)
		hits[i] = Hit{
			Partition:       pid,
			Row:             row,
			VectorID:        byID[pid].ids[row],
			SquaredDistance: c.Distance,
		}
	}
	return hits, nil
}

// GetAttribute returns the value of attribute name for hit. It reports
// false when the database has no such attribute or the row carries no value.
func (db *Database) GetAttribute(ctx context.Context, hit Hit, name string) (AttributeValue, bool, error) {
	if db.closed.Load() {
		return nil, false, ErrClosed
	}
	if hit.Partition < 0 || hit.Partition >= len(db.header.Partitions) ||
		hit.Row < 0 || uint64(hit.Row) >= uint64(db.header.Partitions[hit.Partition].Count) {
		return nil, false, fmt.Errorf("%w: partition %d row %d", ErrInvalidHit, hit.Partition, hit.Row)
	}

	col := db.header.attributeIndex(name)
	if col < 0 {
		return nil, false, nil
	}

	table, err := db.loadAttributes(ctx, hit.Partition)
	if err != nil {
		return nil, false, err
	}

	v := table.get(hit.Row, col)
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Close releases the decoded partitions and their memory reservation.
// Close is idempotent.
func (db *Database) Close() error {
	if db.closed.Swap(true) {
		return nil
	}

	db.mu.Lock()
	clear(db.vectors)
	clear(db.attrs)
	db.mu.Unlock()

	db.rc.ReleaseMemory(db.reserved.Swap(0))
	return nil
}

type rankedPartition struct {
	id       int
	distance float32
}

// rankPartitions returns the ids of the nprobe partitions nearest to vector.
func (db *Database) rankPartitions(vector []float32, nprobe int) []int {
	ranked := make([]rankedPartition, len(db.header.Partitions))
	for i, p := range db.header.Partitions {
		ranked[i] = rankedPartition{id: i, distance: math32.SquaredL2(vector, p.Centroid)}
	}
	slices.SortFunc(ranked, func(a, b rankedPartition) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	n := min(nprobe, len(ranked))
	ids := make([]int, n)
	for i := range ids {
		ids[i] = ranked[i].id
	}
	return ids
}

func scanPartition(part *vectorPartition, pid int, vector []float32, k int) []searcher.Candidate {
	top := searcher.NewTopK(k)
	for row := 0; row < part.len(); row++ {
		d := math32.SquaredL2(vector, part.vector(row))
		if top.Len() == k {
			if worst, _ := top.Worst(); d > worst.Distance {
				continue
			}
		}
		top.Push(searcher.Candidate{ID: packCandidateID(pid, row), Distance: d})
	}
	return top.Drain()
}

// Candidate ids carry the partition in the high and the row in the low 32
// bits so that ties order by partition, then row.
func packCandidateID(pid, row int) uint64 {
	return uint64(pid)<<32 | uint64(uint32(row))
}

func unpackCandidateID(id uint64) (pid, row int) {
	return int(id >> 32), int(uint32(id))
}

func (db *Database) loadVectors(ctx context.Context, pid int) (*vectorPartition, error) {
	db.mu.Lock()
	part, ok := db.vectors[pid]
	db.mu.Unlock()
	if ok {
		return part, nil
	}

	info := db.header.Partitions[pid]
	v, err, _ := db.loads.Do("v"+strconv.Itoa(pid), func() (any, error) {
		db.mu.Lock()
		part, ok := db.vectors[pid]
		db.mu.Unlock()
		if ok {
			return part, nil
		}

		data, err := db.readBlob(ctx, info.VectorsBlob)
		if err != nil {
			return nil, fmt.Errorf("read partition %d vectors %q: %w", pid, info.VectorsBlob, err)
		}
		part, err = decodeVectorBlob(data, db.header.Dim, db.header.Compression, info.Count)
		if err != nil {
			return nil, fmt.Errorf("partition %d vectors %q: %w", pid, info.VectorsBlob, err)
		}
		if err := db.reserve(part.sizeBytes()); err != nil {
			return nil, fmt.Errorf("partition %d vectors: %w", pid, err)
		}

		db.mu.Lock()
		db.vectors[pid] = part
		db.mu.Unlock()

		db.logger.Debug("loaded vectors", "partition", pid, "blob", info.VectorsBlob, "count", part.len())
		return part, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*vectorPartition), nil
}

func (db *Database) loadAttributes(ctx context.Context, pid int) (*attributeTable, error) {
	db.mu.Lock()
	table, ok := db.attrs[pid]
	db.mu.Unlock()
	if ok {
		return table, nil
	}

	info := db.header.Partitions[pid]
	v, err, _ := db.loads.Do("a"+strconv.Itoa(pid), func() (any, error) {
		db.mu.Lock()
		table, ok := db.attrs[pid]
		db.mu.Unlock()
		if ok {
			return table, nil
		}

		data, err := db.readBlob(ctx, info.AttributesBlob)
		if err != nil {
			return nil, fmt.Errorf("read partition %d attributes %q: %w", pid, info.AttributesBlob, err)
		}
		table, err = decodeAttributeBlob(data, db.header.Compression, info.Count, len(db.header.AttributeNames))
		if err != nil {
			return nil, fmt.Errorf("partition %d attributes %q: %w", pid, info.AttributesBlob, err)
		}
		if err := db.reserve(table.sizeBytes()); err != nil {
			return nil, fmt.Errorf("partition %d attributes: %w", pid, err)
		}

		db.mu.Lock()
		db.attrs[pid] = table
		db.mu.Unlock()

		db.logger.Debug("loaded attributes", "partition", pid, "blob", info.AttributesBlob, "rows", table.rows)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*attributeTable), nil
}

func (db *Database) reserve(n int64) error {
	if err := db.rc.AcquireMemory(n); err != nil {
		return err
	}
	db.reserved.Add(n)
	if db.closed.Load() {
		db.rc.ReleaseMemory(db.reserved.Swap(0))
		return ErrClosed
	}
	return nil
}

// readBlob reads a whole blob under the controller's read and IO limits.
func (db *Database) readBlob(ctx context.Context, name string) ([]byte, error) {
	if err := db.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer db.rc.ReleaseRead()

	data, err := blobstore.ReadAll(ctx, db.store, name)
	if err != nil {
		return nil, err
	}
	if err := db.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}
