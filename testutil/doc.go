// Package testutil provides testing utilities for genidx.
//
// This package is intended for use in tests and benchmarks only. It
// generates sorted synthetic feature files, decodes minimal BED records and
// checks index answers against a linear scan.
//
//	rng := testutil.NewRNG(seed)
//	features := rng.SortedFeatures([]string{"chr1", "chr2"}, 500, 300, 2000)
//	path := testutil.WriteBED(t, "sample.bed", nil, features)
//	want := testutil.Overlapping(features, "chr1", s, e)
//	got, _ := testutil.ScanBlocks(data, idx.Blocks("chr1", s, e), "chr1", s, e)
package testutil
