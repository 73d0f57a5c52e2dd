// Package s3 provides an S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "indexes/")
//	idx, err := genidx.LoadIndex(ctx, "sample.bed.idx", genidx.WithBlobStore(store))
//
// # Features
//
//   - Ranged GETs for partial reads
//   - Multipart streaming uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Key prefix for sharing a bucket
package s3
