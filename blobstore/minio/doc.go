// Package minio provides a blobstore.BlobStore on the MinIO client.
//
// It works with MinIO and other S3-compatible services such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
//	store, err := minio.New("localhost:9000", "minioadmin", "minioadmin", false, "genomes", "indexes/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = genidx.WriteIndex(ctx, idx, "sample.bed.idx", genidx.WithBlobStore(store))
package minio
