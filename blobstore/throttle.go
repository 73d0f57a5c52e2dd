package blobstore

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig limits read traffic against a store.
type ThrottleConfig struct {
	// BytesPerSec caps read throughput. Zero means unlimited.
	BytesPerSec int64
	// Burst is the largest single read granted at once. Defaults to
	// BytesPerSec.
	Burst int
	// MaxConcurrentReads caps in-flight reads, counting open ReadRange
	// streams. Zero means unlimited.
	MaxConcurrentReads int64
}

// ThrottledStore wraps a BlobStore and rate-limits reads of the blobs it
// opens. Writes pass through.
type ThrottledStore struct {
	BlobStore
	limiter *rate.Limiter
	burst   int
	sem     *semaphore.Weighted
}

// NewThrottledStore wraps store with the limits in cfg.
func NewThrottledStore(store BlobStore, cfg ThrottleConfig) *ThrottledStore {
	s := &ThrottledStore{BlobStore: store}
	if cfg.BytesPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(min(cfg.BytesPerSec, int64(1<<30)))
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), burst)
		s.burst = burst
	}
	if cfg.MaxConcurrentReads > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}
	return s
}

func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, s: s}, nil
}

func (s *ThrottledStore) acquire(ctx context.Context) (func(), error) {
	if s.sem == nil {
		return func() {}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { s.sem.Release(1) }) }, nil
}

// wait blocks until n bytes of budget are available.
func (s *ThrottledStore) wait(ctx context.Context, n int) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	for n > 0 {
		chunk := min(n, s.burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// throttledBlob hides any Mappable implementation of the wrapped blob so
// reads cannot bypass the limiter.
type throttledBlob struct {
	Blob
	s *ThrottledStore
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	release, err := b.s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := b.s.wait(ctx, len(p)); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}

func (b *throttledBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	release, err := b.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := b.Blob.ReadRange(ctx, off, length)
	if err != nil {
		release()
		return nil, err
	}
	return &throttledReader{ctx: ctx, rc: rc, s: b.s, release: release}, nil
}

type throttledReader struct {
	ctx     context.Context
	rc      io.ReadCloser
	s       *ThrottledStore
	release func()
}

func (r *throttledReader) Read(p []byte) (int, error) {
	if r.s.burst > 0 && len(p) > r.s.burst {
		p = p[:r.s.burst]
	}
	n, err := r.rc.Read(p)
	if n > 0 {
		if werr := r.s.wait(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (r *throttledReader) Close() error {
	defer r.release()
	return r.rc.Close()
}
