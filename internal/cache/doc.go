// Package cache provides an LRU cache for immutable blob blocks.
//
// The LRUBlockCache is byte-budgeted and optionally reports its usage to a
// resource.Controller, so cached blocks count against the same memory limit
// as decoded index partitions.
package cache
