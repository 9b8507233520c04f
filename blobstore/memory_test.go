package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src := []byte("hello world")
	require.NoError(t, store.Put(ctx, "a/b.bin", src))
	src[0] = 'X' // must not leak into the store

	blob, err := store.Open(ctx, "a/b.bin")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(11), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	n, err = blob.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "rld", string(buf[:n]))

	rc, err := blob.ReadRange(ctx, 6, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))

	require.NoError(t, store.Delete(ctx, "a/b.bin"))
	_, err = store.Open(ctx, "a/b.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "x", []byte("x")))

	blob, err := store.Open(context.Background(), "x")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = blob.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "full", []byte("payload")))
	require.NoError(t, store.Put(ctx, "empty", nil))

	got, err := ReadAll(ctx, store, "full")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	got, err = ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadAll(ctx, store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

type downloadStore struct {
	*MemoryStore
	downloads int
}

func (d *downloadStore) Download(ctx context.Context, name string) ([]byte, error) {
	d.downloads++
	b, err := d.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(io.NewSectionReader(readerAt{ctx, b}, 0, b.Size()))
}

type readerAt struct {
	ctx context.Context
	b   Blob
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) { return r.b.ReadAt(r.ctx, p, off) }

func TestReadAll_PrefersDownloader(t *testing.T) {
	ctx := context.Background()
	store := &downloadStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, store.Put(ctx, "d", []byte("downloaded")))

	got, err := ReadAll(ctx, store, "d")
	require.NoError(t, err)
	assert.Equal(t, "downloaded", string(got))
	assert.Equal(t, 1, store.downloads)
}
