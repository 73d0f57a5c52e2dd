package creator

import (
	"testing"

	"github.com/hupe1980/genidx/index"
	"github.com/hupe1980/genidx/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalTreeCreator(t *testing.T) {
	c := NewIntervalTreeCreator("a.bed", 2)
	require.NoError(t, c.AddFeature(feat("chr1", 0, 9), 0))
	require.NoError(t, c.AddFeature(feat("chr1", 20, 29), 10))
	require.NoError(t, c.AddFeature(feat("chr1", 40, 200), 20))
	require.NoError(t, c.AddFeature(feat("chr1", 60, 69), 30))
	require.NoError(t, c.AddFeature(feat("chr2", 5, 9), 40))

	idx, err := c.Finalize(50)
	require.NoError(t, err)
	assert.Equal(t, index.TypeIntervalTree, idx.Type())

	chr, ok := idx.ChrIndex("chr1")
	require.True(t, ok)
	assert.Equal(t, []index.Interval{
		{Start: 0, End: 29, Block: index.Block{StartPos: 0, EndPos: 20}},
		{Start: 40, End: 200, Block: index.Block{StartPos: 20, EndPos: 40}},
	}, chr.(*index.IntervalChrIndex).Intervals())

	chr2, _ := idx.ChrIndex("chr2")
	assert.Equal(t, []index.Block{{StartPos: 40, EndPos: 50}}, chr2.Blocks())

	assert.Equal(t, []index.Block{{StartPos: 20, EndPos: 40}}, idx.Blocks("chr1", 100, 110))
	assert.Equal(t, []index.Block{{StartPos: 0, EndPos: 20}, {StartPos: 20, EndPos: 40}}, idx.Blocks("chr1", 25, 45))
	assert.Nil(t, idx.Blocks("chr1", 300, 400))
	contiguous(t, idx, 50)
}

func TestIntervalTreeCreator_DefaultBinSize(t *testing.T) {
	c := NewIntervalTreeCreator("a.bed", -1)
	assert.Equal(t, IntervalTreeDefaultBinSize, c.BinSize())
	assert.Equal(t, 600, c.DefaultBinSize())
}

func TestIntervalTreeCreator_Finalized(t *testing.T) {
	c := NewIntervalTreeCreator("a.bed", 2)
	_, err := c.Finalize(0)
	require.NoError(t, err)
	assert.ErrorIs(t, c.AddFeature(feat("chr1", 1, 2), 0), ErrFinalized)
}

func TestIntervalTreeCreator_NoFalseNegatives(t *testing.T) {
	rng := testutil.NewRNG(7)
	features := rng.SortedFeatures([]string{"chr1", "chr2"}, 400, 150, 4000)

	c := NewIntervalTreeCreator("r.bed", 16)
	for i, f := range features {
		require.NoError(t, c.AddFeature(f, int64(i*12)))
	}
	finalPos := int64(len(features) * 12)
	idx, err := c.Finalize(finalPos)
	require.NoError(t, err)
	contiguous(t, idx, finalPos)

	for range 200 {
		chr := []string{"chr1", "chr2"}[rng.Intn(2)]
		start := rng.Intn(65000)
		end := start + 1 + rng.Intn(3000)
		blocks := idx.Blocks(chr, start, end)
		for i, f := range features {
			if f.Chr == chr && f.Overlaps(start, end) {
				assert.True(t, covered(blocks, int64(i*12)), "%s missed by [%d,%d)", f, start, end)
			}
		}
	}
}
