package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/searchsimilar/blobstore"
)

// Client is the subset of the S3 API the store needs.
// *s3.Client satisfies it.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures whole-blob downloads.
type Options struct {
	// PartSize is the size of each ranged GET issued by Download.
	PartSize int64
	// Concurrency is the number of parts fetched in parallel by Download.
	Concurrency int
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client     Client
	bucket     string
	prefix     string
	downloader *manager.Downloader
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "my-db").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Store {
	opts := Options{
		PartSize:    manager.DefaultDownloadPartSize,
		Concurrency: manager.DefaultDownloadConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.PartSize = opts.PartSize
			d.Concurrency = opts.Concurrency
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open verifies the blob exists and returns a handle issuing ranged reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate(key, err)
	}

	return &s3Blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Download fetches the whole blob with parallel ranged GETs.
func (s *Store) Download(ctx context.Context, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, b.Size()))
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, s.translate(s.key(name), err)
	}
	return buf.Bytes()[:n], nil
}

func (s *Store) translate(key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("s3://%s/%s: %w", s.bucket, key, blobstore.ErrNotFound)
	}
	return fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	// HEAD responses carry no body, so some errors only surface as a code.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

// s3Blob implements blobstore.Blob
type s3Blob struct {
	client Client
	bucket string
	key    string
	size   int64
}

func (b *s3Blob) Close() error {
	return nil
}

func (b *s3Blob) Size() int64 {
	return b.size
}

// ReadAt reads len(p) bytes starting at offset off with a single ranged GET.
func (b *s3Blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), b.size) - 1

	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	expected := int(end - off + 1)
	n, err := io.ReadFull(resp.Body, p[:expected])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// ReadRange returns a reader for a range of bytes.
func (b *s3Blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size {
		return nil, io.EOF
	}

	end := min(off+length, b.size) - 1

	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}
