package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO blob store.
// rootPrefix is prepended to all keys.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens an existing blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("minio://%s/%s: %w", s.bucket, key, blobstore.ErrNotFound)
		}
		return nil, err
	}

	return &minioBlob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   info.Size,
	}, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	default:
		return false
	}
}

// minioBlob implements blobstore.Blob for MinIO.
type minioBlob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *minioBlob) Size() int64 {
	return b.size
}

func (b *minioBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), b.size) - 1
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}

	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, err
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, p[:end-off+1])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *minioBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size {
		return nil, io.EOF
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, min(off+length, b.size)-1); err != nil {
		return nil, err
	}

	return b.client.GetObject(ctx, b.bucket, b.key, opts)
}

func (b *minioBlob) Close() error {
	return nil
}
