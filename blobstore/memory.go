package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore is an in-memory BlobStore implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Open opens a blob for reading.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	return &memoryBlob{data: data}, nil
}

// Put writes a blob atomically.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[name] = copied
	return nil
}

// Delete removes a blob.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, name)
	return nil
}

// memoryBlob implements Blob for in-memory data.
// Stored slices are never mutated after Put, so no copy is needed.
type memoryBlob struct {
	data []byte
}

func (b *memoryBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *memoryBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, int64(len(b.data)))
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}

func (b *memoryBlob) Close() error {
	return nil
}

func (b *memoryBlob) Size() int64 {
	return int64(len(b.data))
}
