package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/searchsimilar/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	// Local files are mapped; random access into partitions stays cheap.
	m, err := mmap.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Put writes a blob atomically via a temporary file and rename.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type localBlob struct {
	m *mmap.File
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	data := b.m.Bytes()
	if off >= int64(len(data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, int64(len(data)))
	return io.NopCloser(bytes.NewReader(data[off:end])), nil
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.Bytes(), nil
}
