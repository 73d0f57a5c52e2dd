// Package index provides the queryable, serializable result of an index
// build over a sorted genomic feature file.
//
// An Index maps chromosome names to a ChrIndex, which holds an ordered list
// of Blocks: byte ranges of the feature file that may contain features
// overlapping a query. Two strategies exist:
//
//   - TypeLinear: fixed-width coordinate bins. A query resolves to one
//     contiguous byte range computed directly from the bin boundaries.
//   - TypeIntervalTree: blocks of a fixed number of features annotated
//     with their first start and maximum end. A query walks the blocks
//     backwards from the query end and stops once no earlier block can
//     reach the query start.
//
// Queries never omit a block that holds an overlapping feature; they may
// return bytes that hold none.
//
// # Binary Format
//
// All integers are little-endian:
//
//	int32  magic (0x58444954)
//	int32  type (1 = linear, 2 = interval tree)
//	int32  version
//	string path, int64 size, int64 mtime (unix ms), string checksum, int32 flags
//	int32  property count, then (string key, string value) pairs sorted by key
//	int32  chromosome count, then one type-specific table per chromosome
//
// Reading dispatches on the type tag with a plain switch. Writing a freshly
// read Index reproduces the input byte for byte.
//
// An Index is immutable and safe for concurrent use.
package index
