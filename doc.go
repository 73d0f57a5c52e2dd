// Package genidx builds and loads block indexes for sorted genomic feature
// files such as BED or GFF.
//
// An index maps a chromosome region to the byte ranges ("blocks") of the
// feature file that may hold overlapping records, so a reader can seek
// instead of scanning. Two strategies exist: a linear index that splits each
// chromosome into fixed-width bins, and an interval-tree index that groups a
// fixed number of consecutive features per block. The dynamic builder
// computes both in one pass and keeps the one that suits the workload.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, err := genidx.CreateIndex(ctx, "sample.bed", dec)
//	if err != nil {
//	    return err
//	}
//	_ = genidx.WriteIndex(ctx, idx, genidx.DefaultIndexPath("sample.bed"))
//
//	idx, _ = genidx.LoadIndex(ctx, "sample.bed.idx")
//	for _, b := range idx.Blocks("chr1", 10_000, 20_000) {
//	    // read bytes [b.StartPos, b.EndPos) of sample.bed
//	}
//
// dec is a feature.Decoder for the file format. It turns a line into a
// feature.Feature with a 0-based inclusive [Start, End].
//
// # Strategy Selection
//
// CreateIndex scores each candidate with a simple cost model:
//
//	linear:        binWidth * density * ceil(longestFeature / binWidth)
//	interval tree: featuresPerBlock
//
// creator.ForSeekTime (the default) keeps the lowest score and
// creator.ForSize the highest. Use CreateLinearIndex or CreateIntervalIndex
// to force a strategy, or the fluent builder:
//
//	idx, err := genidx.IntervalTree().BinSize(200).Build(ctx, "sample.bed", dec)
//
// # Storage
//
// Index paths ending in .gz, .zst or .lz4 are compressed transparently.
// Local index files are memory mapped for loading and replaced atomically on
// write. WithBlobStore reads and writes through any blobstore.BlobStore,
// including the S3 and MinIO stores in blobstore/s3 and blobstore/minio.
//
// # Errors
//
// Unsorted input and undecodable records wrap ErrMalformedFeatureFile.
// A missing feature file wraps ErrFeatureFileNotFound. LoadIndex failures
// are *UnableToReadIndexFileError.
package genidx
