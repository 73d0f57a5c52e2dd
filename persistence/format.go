package persistence

import "errors"

const (
	// MagicNumber identifies index files (ASCII "TIDX" when read little-endian).
	MagicNumber int32 = 0x58444954
	// Version is the current body layout version.
	Version int32 = 3

	// MaxStringLen bounds strings read from an index file.
	MaxStringLen = 1 << 16
)

var (
	ErrInvalidMagic  = errors.New("invalid magic number")
	ErrStringTooLong = errors.New("string exceeds maximum length")
	ErrInvalidString = errors.New("string contains NUL byte")
)
