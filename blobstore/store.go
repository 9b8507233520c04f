package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing immutable data blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	io.Closer
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// Downloader is an optional interface for stores that can fetch a whole blob
// more efficiently than a single ranged read.
type Downloader interface {
	Download(ctx context.Context, name string) ([]byte, error)
}

// Putter is implemented by stores that accept atomic whole-blob writes.
type Putter interface {
	Put(ctx context.Context, name string, data []byte) error
}

// ReadAll reads the complete blob name from store.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	if d, ok := store.(Downloader); ok {
		return d.Download(ctx, name)
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		// The mapping dies with the blob.
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	buf := make([]byte, b.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return nil, err
	}
	if n != len(buf) {
		return nil, fmt.Errorf("blobstore: short read of %q: %d of %d bytes: %w", name, n, len(buf), io.ErrUnexpectedEOF)
	}
	return buf, nil
}
