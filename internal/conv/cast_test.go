package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToInt32(0)
		assert.NoError(t, err)
		assert.Equal(t, int32(0), got)
	})

	t.Run("valid negative", func(t *testing.T) {
		got, err := IntToInt32(-17)
		assert.NoError(t, err)
		assert.Equal(t, int32(-17), got)
	})

	t.Run("valid max int32", func(t *testing.T) {
		got, err := IntToInt32(math.MaxInt32)
		assert.NoError(t, err)
		assert.Equal(t, int32(math.MaxInt32), got)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToInt32(math.MaxInt32 + 1)
		assert.Error(t, err)
	})

	t.Run("invalid too small", func(t *testing.T) {
		_, err := IntToInt32(math.MinInt32 - 1)
		assert.Error(t, err)
	})
}

func TestInt64ToInt32(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := Int64ToInt32(1 << 20)
		assert.NoError(t, err)
		assert.Equal(t, int32(1<<20), got)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := Int64ToInt32(math.MaxInt64)
		assert.Error(t, err)
	})
}

func TestInt32ToLen(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := Int32ToLen(12)
		assert.NoError(t, err)
		assert.Equal(t, 12, got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := Int32ToLen(-1)
		assert.Error(t, err)
	})
}
