// Package conv provides checked integer conversions.
//
// The index file format stores counts, coordinates and block sizes as
// fixed-width int32 fields. These helpers reject values that would be
// silently truncated on write or that can only come from a corrupt file
// on read.
package conv
