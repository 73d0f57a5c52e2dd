package index

import (
	"errors"
	"fmt"
)

// Type is the on-disk tag identifying an index strategy.
type Type int32

const (
	TypeLinear       Type = 1
	TypeIntervalTree Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeLinear:
		return "linear"
	case TypeIntervalTree:
		return "interval_tree"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// Valid reports whether t names a known strategy.
func (t Type) Valid() bool {
	return t == TypeLinear || t == TypeIntervalTree
}

// Property keys attached by the dynamic creator.
const (
	PropFeatureLengthMean   = "FEATURE_LENGTH_MEAN"
	PropFeatureLengthStdDev = "FEATURE_LENGTH_STD_DEV"
	PropMeanFeatureVariance = "MEAN_FEATURE_VARIANCE"
	PropFeatureCount        = "FEATURE_COUNT"
)

// Header flags.
const (
	// FlagRawLengthStats marks length statistics computed from each
	// feature's own length rather than the running maximum.
	FlagRawLengthStats int32 = 1 << 0
)

var (
	// ErrUnknownType is returned for a type tag or chromosome index that
	// matches no known strategy.
	ErrUnknownType = errors.New("unknown index type")
	// ErrUnsupportedVersion is returned for an index body version this
	// package cannot read.
	ErrUnsupportedVersion = errors.New("unsupported index version")
	// ErrCorrupt is returned when a structurally invalid body is read.
	ErrCorrupt = errors.New("corrupt index")
)

// UnknownTypeError reports the offending tag.
type UnknownTypeError struct {
	Tag int32
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown index type: %d", e.Tag)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }
