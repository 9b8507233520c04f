package cache

import "context"

// CacheKey identifies one block of one blob.
type CacheKey struct {
	// Path identifies the source blob (store-relative name).
	Path string
	// Offset is the block index within the blob.
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may retain b; caller must treat it as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources.
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
