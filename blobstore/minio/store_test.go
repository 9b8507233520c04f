package minio

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("dial tcp: connection refused")))
}

// TestMinioStore_Integration requires a running MinIO instance (MINIO_ENDPOINT).
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "test-searchsimilar"

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "level-1/level-2")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "minio", string(buf))

	rc, err := blob.ReadRange(ctx, 12, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))

	all, err := blobstore.ReadAll(ctx, store, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, data, all)

	_, err = store.Open(ctx, "nonexistent.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
