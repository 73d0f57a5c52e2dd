// Package blobstore abstracts where index files live.
//
// A BlobStore hands out read-only Blobs with context-aware ranged reads and
// WritableBlobs that publish on Close. LoadIndex and WriteIndex in the root
// package go through a BlobStore, so an index can sit next to its feature
// file or in an object store.
//
// # Built-in Implementations
//
//   - LocalStore: a local directory, mmap for reads, atomic temp+rename writes
//   - MemoryStore: in-memory, for tests
//   - ThrottledStore: rate-limits reads of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs backed by memory may also implement Mappable; NewReader then avoids
// a copy.
package blobstore
