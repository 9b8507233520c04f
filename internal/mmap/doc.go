// Package mmap provides read-only memory-mapped file access.
//
//	m, err := mmap.Open("partition-0000.vec")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // valid until Close
package mmap
