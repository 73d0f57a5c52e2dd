package conv

import (
	"fmt"
	"math"
)

// IntToInt32 converts int to int32 safely.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// Int64ToInt32 converts int64 to int32 safely.
func Int64ToInt32(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// Int32ToLen converts an on-disk int32 count or length to int.
// Negative values are rejected since they can only come from corrupt input.
func Int32ToLen(v int32) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("invalid length: %d (negative)", v)
	}
	return int(v), nil
}
