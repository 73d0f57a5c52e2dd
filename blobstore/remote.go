package blobstore

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hupe1980/genidx/persistence"
	"golang.org/x/sync/errgroup"
)

// Fetch opens the byte range [off, end) of a remote object.
type Fetch func(ctx context.Context, off, end int64) (io.ReadCloser, error)

// RangedBlob is a Blob on an object store that serves every read with one
// ranged request. LoadIndex reads an index file front to back in a single
// ReadRange, so nothing is cached.
type RangedBlob struct {
	size  int64
	fetch Fetch
}

// NewRangedBlob returns a Blob of the given size backed by fetch.
func NewRangedBlob(size int64, fetch Fetch) *RangedBlob {
	return &RangedBlob{size: size, fetch: fetch}
}

func (b *RangedBlob) Size() int64 { return b.size }

func (b *RangedBlob) Close() error { return nil }

func (b *RangedBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), b.size)

	body, err := b.fetch(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	n, err := io.ReadFull(body, p[:end-off])
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return n, io.EOF
	case err != nil:
		return n, err
	case n < len(p):
		return n, io.EOF
	}
	return n, nil
}

func (b *RangedBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= b.size {
		return nil, io.EOF
	}
	return b.fetch(ctx, off, min(off+max(length, 0), b.size))
}

// ErrUploadAborted fails the body of an aborted upload.
var ErrUploadAborted = errors.New("blobstore: upload aborted")

// Upload streams writes into an object store call running in the
// background. The object is published when Close returns nil. Abort fails
// the body so the store discards what it received.
type Upload struct {
	pw   *io.PipeWriter
	g    errgroup.Group
	once sync.Once
	err  error
}

var (
	_ WritableBlob = (*Upload)(nil)
	_ Aborter      = (*Upload)(nil)
)

// StartUpload runs put with the read side of the stream.
func StartUpload(put func(body io.Reader) error) *Upload {
	pr, pw := io.Pipe()
	u := &Upload{pw: pw}
	u.g.Go(func() error {
		err := put(pr)
		_ = pr.CloseWithError(err)
		return err
	})
	return u
}

// Write fails with the upload error once the store gave up, and with
// io.ErrClosedPipe after Close.
func (u *Upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

// Sync is a no-op; data is committed on Close.
func (u *Upload) Sync() error { return nil }

// Close ends the stream and waits for the store to publish it.
func (u *Upload) Close() error { return u.finish(nil) }

// Abort ends the stream with ErrUploadAborted and waits for the store to
// give up. Abort after Close does nothing.
func (u *Upload) Abort() error {
	_ = u.finish(ErrUploadAborted)
	return nil
}

func (u *Upload) finish(cause error) error {
	u.once.Do(func() {
		_ = u.pw.CloseWithError(cause)
		u.err = u.g.Wait()
		if cause != nil {
			u.err = cause
		}
	})
	return u.err
}

// ContentType returns the media type stored with an index file, chosen by
// the same suffix rules that pick its compression.
func ContentType(name string) string {
	switch persistence.CompressionFor(name) {
	case persistence.CompressionGzip:
		return "application/gzip"
	case persistence.CompressionZstd:
		return "application/zstd"
	case persistence.CompressionLZ4:
		return "application/x-lz4"
	default:
		return "application/octet-stream"
	}
}
