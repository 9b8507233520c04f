// Package blobstore provides the storage abstraction the index is read from.
//
// A BlobStore opens immutable, read-only blobs by store-relative name.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and fixtures
//   - LocalStore: local filesystem with mmap support
//   - CachingStore: block-level LRU cache in front of another store
//   - s3.Store: Amazon S3 with range reads and parallel downloads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Optional Capabilities
//
// Blobs may implement Mappable for zero-copy access, and stores may implement
// Downloader when they can fetch a whole blob faster than a ranged ReadAt.
// ReadAll picks the best available path.
package blobstore
