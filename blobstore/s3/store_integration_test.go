package s3

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/searchsimilar/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reads an existing object; set S3_BUCKET and S3_KEY to run.
func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	key := os.Getenv("S3_KEY")
	if bucket == "" || key == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET/S3_KEY not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	store := NewStore(s3.NewFromConfig(cfg), bucket, "")

	blob, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer blob.Close()

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, blob.Size(), int64(len(data)))

	_, err = store.Open(ctx, key+".does-not-exist")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
