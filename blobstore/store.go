package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
// It aliases os.ErrNotExist so local and remote misses look alike.
var ErrNotFound = os.ErrNotExist

// BlobStore stores index files and, optionally, the feature files they
// describe. Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create starts a streaming write. The blob becomes visible on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a whole blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	// ReadAt reads len(p) bytes at off. Short reads at the end return io.EOF.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange streams up to length bytes starting at off. An off at or past
	// the end yields io.EOF.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	io.Closer
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.Writer
	io.Closer
	Sync() error
}

// Aborter is implemented by writable blobs that can discard a partial write
// instead of publishing it on Close.
type Aborter interface {
	Abort() error
}

// Mappable is implemented by blobs whose contents are mapped in memory.
type Mappable interface {
	// Bytes returns the contents. The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// NewReader streams the whole blob from the start.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if b.Size() == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.ReadRange(ctx, 0, b.Size())
}

// ReadBytes copies the byte range [start, end) of b.
func ReadBytes(ctx context.Context, b Blob, start, end int64) ([]byte, error) {
	if end <= start {
		return nil, nil
	}
	buf := make([]byte, end-start)
	n, err := b.ReadAt(ctx, buf, start)
	if err == io.EOF && int64(n) == end-start {
		err = nil
	}
	return buf[:n], err
}

// sliceRange implements ReadRange over an in-memory slice.
func sliceRange(data []byte, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, io.EOF
	}
	end := min(off+max(length, 0), int64(len(data)))
	return io.NopCloser(bytes.NewReader(data[off:end])), nil
}

// sliceReadAt implements ReadAt over an in-memory slice.
func sliceReadAt(data []byte, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
