package genidx

import (
	"context"
	"log/slog"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

type builderKind int

const (
	kindDynamic builderKind = iota
	kindLinear
	kindIntervalTree
)

// =============================================================================
// Index Builder (Immutable)
// =============================================================================

// IndexBuilder is an immutable fluent builder for index creation. Each method
// returns a new builder with the updated configuration, so a configured
// builder can be shared between goroutines.
//
// Example:
//
//	idx, err := genidx.Dynamic().
//	    ForSize().
//	    Parallel(true).
//	    Checksum(true).
//	    Build(ctx, "sample.bed", dec)
type IndexBuilder struct {
	kind       builderKind
	approach   creator.BalancingApproach
	binSize    int
	parallel   bool
	rawLengths bool
	checksum   bool
	logger     *Logger
	metrics    MetricsCollector
	store      blobstore.BlobStore
}

// Dynamic returns a builder that lets the cost model pick the strategy.
// The default approach is ForSeekTime.
func Dynamic() IndexBuilder {
	return IndexBuilder{kind: kindDynamic, approach: creator.ForSeekTime}
}

// Linear returns a builder for a linear index.
func Linear() IndexBuilder {
	return IndexBuilder{kind: kindLinear}
}

// IntervalTree returns a builder for an interval-tree index.
func IntervalTree() IndexBuilder {
	return IndexBuilder{kind: kindIntervalTree}
}

// BinSize sets the bin size of a Linear or IntervalTree build. It has no
// effect on Dynamic builds, whose bin sizes follow the approach.
func (b IndexBuilder) BinSize(n int) IndexBuilder {
	b.binSize = n
	return b
}

// ForSize makes a Dynamic build favor the smallest index.
func (b IndexBuilder) ForSize() IndexBuilder {
	b.approach = creator.ForSize
	return b
}

// ForSeekTime makes a Dynamic build favor the fewest bytes read per query.
func (b IndexBuilder) ForSeekTime() IndexBuilder {
	b.approach = creator.ForSeekTime
	return b
}

// Parallel builds Dynamic candidates concurrently.
func (b IndexBuilder) Parallel(enabled bool) IndexBuilder {
	b.parallel = enabled
	return b
}

// RawFeatureLengthStats see WithRawFeatureLengthStats.
func (b IndexBuilder) RawFeatureLengthStats(enabled bool) IndexBuilder {
	b.rawLengths = enabled
	return b
}

// Checksum records a CRC32 of the feature file in the index.
func (b IndexBuilder) Checksum(enabled bool) IndexBuilder {
	b.checksum = enabled
	return b
}

// Logger sets the logger.
func (b IndexBuilder) Logger(l *Logger) IndexBuilder {
	b.logger = l
	return b
}

// LogLevel sets a text logger at level.
func (b IndexBuilder) LogLevel(level slog.Level) IndexBuilder {
	b.logger = NewTextLogger(level)
	return b
}

// Metrics sets the metrics collector.
func (b IndexBuilder) Metrics(mc MetricsCollector) IndexBuilder {
	b.metrics = mc
	return b
}

// BlobStore sets the store used by Write.
func (b IndexBuilder) BlobStore(store blobstore.BlobStore) IndexBuilder {
	b.store = store
	return b
}

// Options returns the builder configuration as functional options.
func (b IndexBuilder) Options() []Option {
	opts := []Option{
		WithBalancingApproach(b.approach),
		WithBinSize(b.binSize),
		WithParallel(b.parallel),
		WithRawFeatureLengthStats(b.rawLengths),
		WithChecksum(b.checksum),
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	if b.store != nil {
		opts = append(opts, WithBlobStore(b.store))
	}
	return opts
}

// Build indexes the feature file at path.
func (b IndexBuilder) Build(ctx context.Context, path string, dec feature.Decoder) (*index.Index, error) {
	switch b.kind {
	case kindLinear:
		return CreateLinearIndex(ctx, path, dec, b.Options()...)
	case kindIntervalTree:
		return CreateIntervalIndex(ctx, path, dec, b.Options()...)
	default:
		return CreateIndex(ctx, path, dec, b.Options()...)
	}
}

// Write builds the index and writes it to DefaultIndexPath(path), through
// the configured blob store if any.
func (b IndexBuilder) Write(ctx context.Context, path string, dec feature.Decoder) (*index.Index, error) {
	idx, err := b.Build(ctx, path, dec)
	if err != nil {
		return nil, err
	}
	if err := WriteIndex(ctx, idx, DefaultIndexPath(path), b.Options()...); err != nil {
		return nil, err
	}
	return idx, nil
}
