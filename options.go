package genidx

import (
	"log/slog"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/internal/fs"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	store            blobstore.BlobStore
	fs               FileSystem
	approach         creator.BalancingApproach
	binSize          int
	parallel         bool
	rawLengths       bool
	checksum         bool
}

// Option configures index creation, loading and writing.
type Option func(*options)

// WithMetricsCollector configures metrics collection for builds, loads and
// writes.
//
// Example:
//
//	metrics := &genidx.BasicMetricsCollector{}
//	idx, _ := genidx.CreateIndex(ctx, "sample.bed", dec, genidx.WithMetricsCollector(metrics))
//	fmt.Println(metrics.GetStats().BuildFeatures)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithBlobStore reads and writes index files through store. Paths passed to
// LoadIndex and WriteIndex are then blob names. Without it, index files are
// local and read through a memory mapping.
func WithBlobStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithBalancingApproach sets what CreateIndex optimizes for. The default is
// creator.ForSeekTime.
func WithBalancingApproach(a creator.BalancingApproach) Option {
	return func(o *options) {
		o.approach = a
	}
}

// WithBinSize overrides the bin size of CreateLinearIndex (bases per bin)
// and CreateIntervalIndex (features per block). Values <= 0 keep the
// strategy default.
func WithBinSize(n int) Option {
	return func(o *options) {
		o.binSize = n
	}
}

// WithParallel builds the candidates of CreateIndex concurrently.
func WithParallel(enabled bool) Option {
	return func(o *options) {
		o.parallel = enabled
	}
}

// WithRawFeatureLengthStats records per-feature lengths in the length
// statistics properties instead of the running maximum.
func WithRawFeatureLengthStats(enabled bool) Option {
	return func(o *options) {
		o.rawLengths = enabled
	}
}

// WithChecksum stores a CRC32 of the feature file in the index header. The
// checksum is computed during the build pass.
func WithChecksum(enabled bool) Option {
	return func(o *options) {
		o.checksum = enabled
	}
}

// File is an open feature file as returned by a FileSystem.
type File = fs.File

// FileSystem opens feature files for CreateIndex, CreateLinearIndex,
// CreateIntervalIndex and VerifySource. The default reads the local disk.
type FileSystem = fs.FileSystem

// WithFileSystem replaces the file system used to read feature files, for
// example to index files held in memory or to inject read faults.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		fs:               fs.Default,
		approach:         creator.ForSeekTime,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.fs == nil {
		o.fs = fs.Default
	}
	return o
}
