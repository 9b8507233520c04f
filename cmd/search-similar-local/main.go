// Command search-similar-local runs the search handler against a local
// directory or a MinIO endpoint.
//
// Seed a random database and query it:
//
//	search-similar-local -dir ./data -bucket vectors -header-key db/v1/header.bin -seed 10000 -dim 64
//	echo '[0.1, 0.2, ...]' | search-similar-local -dir ./data -bucket vectors -header-key db/v1/header.bin
//
// The query input holds one JSON array per vector, as a single array, an array
// of arrays, or JSON lines. One result array is written per query vector.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/searchsimilar"
	"github.com/hupe1980/searchsimilar/blobstore"
	miniostore "github.com/hupe1980/searchsimilar/blobstore/minio"
	"github.com/hupe1980/searchsimilar/codec"
	"github.com/hupe1980/searchsimilar/index"
	"github.com/hupe1980/searchsimilar/index/indextest"
	"github.com/hupe1980/searchsimilar/internal/cache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "search-similar-local: %s: %v\n", searchsimilar.KindOf(err), err)
		os.Exit(1)
	}
}

type flags struct {
	dir            string
	minioEndpoint  string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool

	bucket    string
	headerKey string
	query     string
	codec     string
	logLevel  string

	cacheBytes int64
	seed       int
	dim        int
	partitions int
	rngSeed    uint64
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("search-similar-local", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.dir, "dir", "", "local root directory; buckets are subdirectories")
	fs.StringVar(&f.minioEndpoint, "minio-endpoint", "", "MinIO endpoint (host:port) used instead of -dir")
	fs.StringVar(&f.minioAccessKey, "minio-access-key", envOr("MINIO_ACCESS_KEY", "minioadmin"), "MinIO access key")
	fs.StringVar(&f.minioSecretKey, "minio-secret-key", envOr("MINIO_SECRET_KEY", "minioadmin"), "MinIO secret key")
	fs.BoolVar(&f.minioSecure, "minio-secure", false, "use TLS for MinIO")
	fs.StringVar(&f.bucket, "bucket", os.Getenv(searchsimilar.EnvBucketName), "bucket holding the database")
	fs.StringVar(&f.headerKey, "header-key", os.Getenv(searchsimilar.EnvHeaderKey), "header key <base-path>/<file-name>")
	fs.StringVar(&f.query, "query", "-", "file with query vectors, - for stdin")
	fs.StringVar(&f.codec, "codec", codec.Default.Name(), "codec for input and output (json, go-json)")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level")
	fs.Int64Var(&f.cacheBytes, "cache-bytes", 64<<20, "block cache size shared by all queries (0 disables)")
	fs.IntVar(&f.seed, "seed", 0, "write a random database with this many vectors before querying")
	fs.IntVar(&f.dim, "dim", 1536, "dimension of seeded vectors")
	fs.IntVar(&f.partitions, "partitions", 16, "number of partitions of the seeded database")
	fs.Uint64Var(&f.rngSeed, "rng-seed", 42, "random seed for -seed")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if (f.dir == "") == (f.minioEndpoint == "") {
		return nil, errors.New("exactly one of -dir and -minio-endpoint is required")
	}
	return f, nil
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

// backend is a store that can be both read and seeded.
type backend interface {
	blobstore.BlobStore
	blobstore.Putter
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	c, ok := codec.ByName(f.codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", f.codec)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return err
	}
	logger := searchsimilar.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := searchsimilar.Config{
		BucketName: f.bucket,
		HeaderKey:  f.headerKey,
		LogLevel:   level,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	newBackend, err := backendFactory(f)
	if err != nil {
		return err
	}

	if f.seed > 0 {
		if err := seed(ctx, f, newBackend, logger); err != nil {
			return err
		}
	}

	var blockCache *cache.LRUBlockCache
	if f.cacheBytes > 0 {
		blockCache = cache.NewLRUBlockCache(f.cacheBytes, nil)
		defer blockCache.Close()
	}

	opener := searchsimilar.NewStoreOpener(func(ctx context.Context, bucket, basePath string) (blobstore.BlobStore, error) {
		store, err := newBackend(bucket, basePath)
		if err != nil {
			return nil, err
		}
		if blockCache == nil {
			return store, nil
		}
		return blobstore.NewCachingStore(store, blockCache, 0), nil
	}, func(o *searchsimilar.StoreOpenerOptions) {
		o.Logger = logger.Logger
	})

	metrics := &searchsimilar.BasicMetricsCollector{}
	h := searchsimilar.New(cfg, opener,
		searchsimilar.WithLogger(logger),
		searchsimilar.WithMetricsCollector(metrics),
	)

	in := stdin
	if f.query != "-" {
		file, err := os.Open(f.query)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	vectors, err := codec.DecodeVectors(c, in)
	if err != nil {
		return fmt.Errorf("read queries: %w", err)
	}

	for _, v := range vectors {
		results, err := h.Handle(ctx, v)
		if err != nil {
			return err
		}
		out, err := c.Marshal(results)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(stdout, "%s\n", out); err != nil {
			return err
		}
	}

	stats := metrics.GetStats()
	logger.Info("done",
		"queries", stats.QueryCount,
		"avg_open_nanos", stats.OpenAvgNanos,
		"avg_query_nanos", stats.QueryAvgNanos,
		"avg_resolve_nanos", stats.ResolveAvgNanos,
	)
	return nil
}

func backendFactory(f *flags) (func(bucket, basePath string) (backend, error), error) {
	if f.dir != "" {
		return func(bucket, basePath string) (backend, error) {
			return blobstore.NewLocalStore(filepath.Join(f.dir, bucket, filepath.FromSlash(basePath))), nil
		}, nil
	}

	client, err := minio.New(f.minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(f.minioAccessKey, f.minioSecretKey, ""),
		Secure: f.minioSecure,
	})
	if err != nil {
		return nil, err
	}
	return func(bucket, basePath string) (backend, error) {
		return miniostore.NewStore(client, bucket, basePath), nil
	}, nil
}

func seed(ctx context.Context, f *flags, newBackend func(bucket, basePath string) (backend, error), logger *searchsimilar.Logger) error {
	basePath, headerFile, err := searchsimilar.SplitHeaderKey(f.headerKey)
	if err != nil {
		return err
	}
	store, err := newBackend(f.bucket, basePath)
	if err != nil {
		return err
	}

	_, err = indextest.Random(ctx, store, headerFile, f.seed, f.dim, f.partitions, f.rngSeed,
		func(o *indextest.Options) { o.Compression = index.CompressionZSTD })
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("seeded database", "vectors", f.seed, "dim", f.dim, "partitions", f.partitions)
	return nil
}
