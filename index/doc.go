// Package index reads partitioned (IVF) vector databases stored as blobs.
//
// A database consists of one header blob and, per partition, a vector blob
// and an attribute blob. The header carries the dimension, the block
// compression, the attribute names and, for every partition, its centroid,
// vector count and blob names. Blob names are relative to the store, so a
// database lives wherever the store is rooted.
//
// Queries rank partitions by the squared L2 distance between the query and
// each centroid, scan only the nprobe nearest partitions and return the k
// nearest vectors as Hits. Attributes are loaded lazily, one partition at a
// time, the first time a Hit of that partition asks for one.
//
//	db, err := index.Open(ctx, store, "header.bin")
//	if err != nil { ... }
//	defer db.Close()
//
//	hits, err := db.Query(ctx, vector, 30, 1)
//	for _, hit := range hits {
//	    v, ok, err := db.GetAttribute(ctx, hit, "content_id")
//	    ...
//	}
//
// A Database is safe for concurrent use.
package index
