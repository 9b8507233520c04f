// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "indexes/2024-06")
//
//	db, err := index.Open(ctx, store, "header.bin")
//
// # Features
//
//   - Range reads for partial fetches
//   - Parallel ranged downloads of whole blobs through the transfer manager
//   - NotFound/NoSuchKey/NoSuchBucket mapped to blobstore.ErrNotFound
package s3
