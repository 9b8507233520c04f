package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/searchsimilar/internal/cache"
	"golang.org/x/sync/errgroup"
)

// CachingStore wraps a BlobStore and adds block-level caching.
// Blobs are immutable, so cached blocks never go stale.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to 64KB if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 64 * 1024
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// CachingBlob wraps a Blob and uses the block cache for reads.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 || off >= b.Size() {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), b.Size())
	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	// Coalesce missing blocks into runs before touching the backend.
	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersection of [blkStart, blkStart+blockSize) and [off, end).
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, end)
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break
		}
		dstOffset := intersectStart - off
		copySize := min(intersectEnd-intersectStart, int64(len(blockData))-srcOffset)

		totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{Path: b.name, Offset: uint64(blk)}
}

// fillCache ensures that the blocks in the given range are loaded into the cache.
// Contiguous runs of missing blocks are fetched with one backend request each.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct{ start, count int64 }

	var missing []run
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
			continue
		}
		missing = append(missing, run{start: blk, count: 1})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := min(r.count*b.blockSize, b.Size()-byteStart)
			if byteSize <= 0 {
				return nil
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(valid)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(valid)))

				// Copy so a cached block does not pin the whole run buffer.
				block := make([]byte, hi-lo)
				copy(block, valid[lo:hi])
				b.cache.Set(gctx, b.key(r.start+i), block)
			}
			return nil
		})
	}
	return g.Wait()
}

// fetchBlock returns a block from the cache, reading it from the inner blob
// if the cache refused or evicted it in the meantime.
func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n > 0 {
		b.cache.Set(ctx, b.key(blk), buf[:n])
	}
	return buf[:n], nil
}

// contextSectionReader adapts CachingBlob.ReadAt to io.Reader.
type contextSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}
