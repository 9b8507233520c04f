// Package resource implements the Controller that bounds what a single
// invocation may consume while loading index data.
//
// The Controller manages three resource types:
//
//   - Memory: budget for decoded partition data (non-blocking, fail-fast)
//   - Reads: number of blob reads in flight against the storage backend
//   - IO: token bucket over bytes fetched from the storage backend
//
// All methods handle a nil Controller gracefully: they become no-ops, so
// limits stay optional without nil checks at every call site.
package resource
