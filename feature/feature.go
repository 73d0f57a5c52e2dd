// Package feature defines the genomic interval records consumed by index
// creators and the offset-tracking line reader used to stream them from a
// sorted feature file.
//
// Decoding a line into a Feature is format specific and is supplied by the
// caller through the Decoder interface.
package feature

import (
	"errors"
	"fmt"
)

// Feature is a decoded genomic interval. Coordinates are treated as the
// closed interval [Start, End].
type Feature struct {
	Chr   string
	Start int
	End   int
}

// Len returns the number of bases covered by f.
func (f Feature) Len() int {
	return f.End - f.Start + 1
}

// Overlaps reports whether f intersects the half-open query [start, end).
func (f Feature) Overlaps(start, end int) bool {
	return f.Start < end && f.End >= start
}

func (f Feature) String() string {
	return fmt.Sprintf("%s:%d-%d", f.Chr, f.Start, f.End)
}

// ErrSkipRecord is returned by a Decoder for lines that carry no feature
// (comments, track lines, blank lines). The line is consumed and ignored.
var ErrSkipRecord = errors.New("feature: skip record")

// Decoder turns raw text records into features.
type Decoder interface {
	// SkipHeader consumes any header lines before the first record.
	// Implementations use PeekLine to inspect a line without consuming it.
	SkipHeader(r *LineReader) error
	// Decode parses one record. The line has no trailing newline.
	Decode(line string) (Feature, error)
}

// DecodeError reports a record that the decoder rejected.
type DecodeError struct {
	Offset int64
	Line   string
	cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode record at offset %d: %v", e.Offset, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }
