package genidx

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
	"github.com/hupe1980/genidx/persistence"
)

// IndexExtension is appended to a feature file path to name its index.
const IndexExtension = ".idx"

// DefaultIndexPath returns the conventional index path for a feature file.
func DefaultIndexPath(featurePath string) string {
	return featurePath + IndexExtension
}

// LoadIndex reads the index at path. Compression is detected from the path
// suffix. Every failure is returned as an *UnableToReadIndexFileError.
func LoadIndex(ctx context.Context, path string, optFns ...Option) (*index.Index, error) {
	o := applyOptions(optFns)

	start := time.Now()
	idx, err := loadIndex(ctx, path, o)
	o.metricsCollector.RecordLoad(time.Since(start), err)

	var typ index.Type
	if idx != nil {
		typ = idx.Type()
	}
	o.logger.LogLoad(ctx, path, typ, err)

	if err != nil {
		return nil, &UnableToReadIndexFileError{Path: path, cause: err}
	}
	return idx, nil
}

func (o *options) resolve(path string) (blobstore.BlobStore, string) {
	if o.store != nil {
		return o.store, path
	}
	return blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path)
}

func loadIndex(ctx context.Context, path string, o options) (*index.Index, error) {
	store, name := o.resolve(path)

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := persistence.NewReader(rc, persistence.CompressionFor(path))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return index.Read(r)
}

// WriteIndex writes idx to path, compressed according to the path suffix.
// Local writes are atomic; blob store writes are published on success and
// aborted on failure where the store supports it.
func WriteIndex(ctx context.Context, idx *index.Index, path string, optFns ...Option) error {
	o := applyOptions(optFns)

	start := time.Now()
	err := writeIndex(ctx, idx, path, o)
	o.metricsCollector.RecordWrite(time.Since(start), err)
	o.logger.LogWrite(ctx, path, err)

	if err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}

func writeIndex(ctx context.Context, idx *index.Index, path string, o options) error {
	if idx == nil {
		return errors.New("nil index")
	}
	c := persistence.CompressionFor(path)

	if o.store == nil {
		return persistence.SaveToFile(path, func(w io.Writer) error {
			return encode(w, idx, c)
		})
	}

	wb, err := o.store.Create(ctx, path)
	if err != nil {
		return err
	}
	if err := encode(wb, idx, c); err != nil {
		if a, ok := wb.(blobstore.Aborter); ok {
			_ = a.Abort()
		}
		return err
	}
	return wb.Close()
}

func encode(w io.Writer, idx *index.Index, c persistence.Compression) error {
	cw, err := persistence.NewWriter(w, c)
	if err != nil {
		return err
	}
	if _, err := idx.WriteTo(cw); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// CreateIndex builds every strategy over the feature file at path in one
// pass and returns the one that fits the balancing approach best
// (WithBalancingApproach, default creator.ForSeekTime).
func CreateIndex(ctx context.Context, path string, dec feature.Decoder, optFns ...Option) (*index.Index, error) {
	o := applyOptions(optFns)
	d := creator.NewDynamicCreator(path, o.approach, func(do *creator.DynamicOptions) {
		do.Parallel = o.parallel
		do.RawFeatureLengthStats = o.rawLengths
	})

	idx, err := build(ctx, path, dec, d, o)
	if err == nil {
		o.logger.LogSelection(ctx, o.approach, d.Candidates(), idx.Type())
	}
	return idx, err
}

// CreateLinearIndex builds a linear index. WithBinSize sets the bin width
// in bases.
func CreateLinearIndex(ctx context.Context, path string, dec feature.Decoder, optFns ...Option) (*index.Index, error) {
	o := applyOptions(optFns)
	return build(ctx, path, dec, creator.Ordered(creator.NewLinearCreator(path, o.binSize), path), o)
}

// CreateIntervalIndex builds an interval-tree index. WithBinSize sets the
// number of features per block.
func CreateIntervalIndex(ctx context.Context, path string, dec feature.Decoder, optFns ...Option) (*index.Index, error) {
	o := applyOptions(optFns)
	return build(ctx, path, dec, creator.Ordered(creator.NewIntervalTreeCreator(path, o.binSize), path), o)
}

func build(ctx context.Context, path string, dec feature.Decoder, c creator.Builder, o options) (*index.Index, error) {
	start := time.Now()
	idx, n, err := scan(ctx, path, dec, c, o)
	err = translateError(err)

	var typ index.Type
	if idx != nil {
		typ = idx.Type()
	}
	o.metricsCollector.RecordBuild(typ, n, time.Since(start), err)
	o.logger.LogBuild(ctx, path, typ, n, err)

	if err != nil {
		return nil, err
	}
	return idx, nil
}

// scan feeds every record of the feature file to c and returns the
// finalized index along with the number of features read.
func scan(ctx context.Context, path string, dec feature.Decoder, c creator.Builder, o options) (idx *index.Index, n int, err error) {
	defer func() {
		if a, ok := c.(interface{ Abort() }); ok && err != nil {
			a.Abort()
		}
	}()

	f, err := o.fs.Open(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %w", ErrFeatureFileNotFound, err)
		}
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}

	var (
		r   io.Reader = f
		sum *persistence.Fingerprint
	)
	if o.checksum {
		sum = persistence.NewFingerprint(f)
		r = sum
	}

	lr := feature.NewLineReader(r)
	if err := dec.SkipHeader(lr); err != nil {
		return nil, 0, fmt.Errorf("%s: skip header: %w", path, err)
	}

	src := feature.NewSource(lr, dec)
	for {
		if err := ctx.Err(); err != nil {
			return nil, n, err
		}
		feat, pos, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, n, err
		}
		n++
		if err := c.AddFeature(feat, pos); err != nil {
			return nil, n, err
		}
	}

	idx, err = c.Finalize(src.Position())
	if err != nil {
		return nil, n, err
	}

	meta := idx.Source()
	meta.Size = info.Size()
	meta.ModTime = info.ModTime().UnixMilli()
	if sum != nil {
		meta.Checksum = sum.String()
	}
	return idx.WithSource(meta), n, nil
}

// VerifySource reports whether the feature file at path still matches idx.
// Size and modification time are always compared; the file is re-read only
// when the index carries a checksum. A mismatch wraps ErrStaleIndex.
func VerifySource(ctx context.Context, idx *index.Index, path string, optFns ...Option) error {
	o := applyOptions(optFns)

	f, err := o.fs.Open(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrFeatureFileNotFound, err)
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !idx.IsCurrent(info) {
		return fmt.Errorf("%w: %s changed since the index was built", ErrStaleIndex, path)
	}

	stored := idx.Source().Checksum
	if stored == "" {
		return nil
	}
	if _, err := persistence.ParseChecksum(stored); err != nil {
		return fmt.Errorf("%w: %w", index.ErrCorrupt, err)
	}

	fp := persistence.NewFingerprint(f)
	if err := fp.Drain(ctx); err != nil {
		return err
	}
	if err := fp.Match(stored); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleIndex, err)
	}
	return nil
}
