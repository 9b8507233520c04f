// Package minio provides a BlobStore implementation using the MinIO client.
//
// It serves indexes from MinIO and other S3-compatible systems (Ceph,
// SeaweedFS, Garage) without the AWS SDK, which is how the local CLI talks to
// self-hosted storage.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "indexes/2024-06")
package minio
