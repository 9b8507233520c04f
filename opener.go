package searchsimilar

import (
	"context"
	"log/slog"

	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/hupe1980/searchsimilar/index"
	"github.com/hupe1980/searchsimilar/internal/resource"
)

// Index is an opened database, owned by one Handle call.
type Index interface {
	AttributeSource

	// Query returns up to k hits ordered by ascending squared distance.
	Query(ctx context.Context, vector []float32, k, nprobe int) ([]index.Hit, error)

	// Close releases the database.
	Close() error
}

// AttributeSource resolves attributes of hits.
type AttributeSource interface {
	// GetAttribute returns the value of attribute name for hit, or false if
	// the hit carries no such attribute.
	GetAttribute(ctx context.Context, hit index.Hit, name string) (index.AttributeValue, bool, error)
}

// IndexOpener opens the database whose header is headerFile under basePath in bucket.
type IndexOpener interface {
	Open(ctx context.Context, bucket, basePath, headerFile string) (Index, error)
}

// IndexOpenerFunc adapts a function to IndexOpener.
type IndexOpenerFunc func(ctx context.Context, bucket, basePath, headerFile string) (Index, error)

// Open implements IndexOpener.
func (f IndexOpenerFunc) Open(ctx context.Context, bucket, basePath, headerFile string) (Index, error) {
	return f(ctx, bucket, basePath, headerFile)
}

// StoreFactory returns a blob store rooted at basePath in bucket.
type StoreFactory func(ctx context.Context, bucket, basePath string) (blobstore.BlobStore, error)

// StoreOpenerOptions configures a StoreOpener.
type StoreOpenerOptions struct {
	// MaxConcurrentReads limits blob reads in flight per opened database (0 = unlimited).
	MaxConcurrentReads int64
	// MemoryLimitBytes limits decoded partition data per opened database (0 = unlimited).
	MemoryLimitBytes int64
	// Logger receives debug output of the index. If nil, logs are discarded.
	Logger *slog.Logger
}

// StoreOpener opens databases stored as blobs through a StoreFactory.
type StoreOpener struct {
	newStore StoreFactory
	opts     StoreOpenerOptions
}

// NewStoreOpener creates a StoreOpener.
func NewStoreOpener(newStore StoreFactory, optFns ...func(*StoreOpenerOptions)) *StoreOpener {
	opts := StoreOpenerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &StoreOpener{newStore: newStore, opts: opts}
}

// Open implements IndexOpener. Every call opens a fresh database with its own
// resource budget.
func (o *StoreOpener) Open(ctx context.Context, bucket, basePath, headerFile string) (Index, error) {
	store, err := o.newStore(ctx, bucket, basePath)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MaxConcurrentReads: o.opts.MaxConcurrentReads,
		MemoryLimitBytes:   o.opts.MemoryLimitBytes,
	})

	db, err := index.Open(ctx, store, headerFile,
		index.WithController(rc),
		index.WithLogger(o.opts.Logger),
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
