package index

import (
	"fmt"
	"slices"

	"github.com/hupe1980/genidx/internal/conv"
	"github.com/hupe1980/genidx/persistence"
)

// LinearChrIndex partitions one chromosome into bins of BinWidth bases.
// Bin i holds features whose start lies in [i*BinWidth, (i+1)*BinWidth)
// and spans bytes [positions[i], positions[i+1]).
type LinearChrIndex struct {
	name           string
	binWidth       int
	longestFeature int
	nFeatures      int
	positions      []int64
}

// NewLinearChrIndex creates a linear chromosome index from its bin
// boundaries. positions holds nBins+1 non-decreasing offsets.
func NewLinearChrIndex(name string, binWidth, longestFeature, nFeatures int, positions []int64) (*LinearChrIndex, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("%w: chromosome %q: bin width %d", ErrCorrupt, name, binWidth)
	}
	if len(positions) < 2 {
		return nil, fmt.Errorf("%w: chromosome %q: need at least one bin", ErrCorrupt, name)
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			return nil, fmt.Errorf("%w: chromosome %q: bin %d ends before it starts", ErrCorrupt, name, i-1)
		}
	}
	return &LinearChrIndex{
		name:           name,
		binWidth:       binWidth,
		longestFeature: longestFeature,
		nFeatures:      nFeatures,
		positions:      positions,
	}, nil
}

func (c *LinearChrIndex) Name() string { return c.name }

func (c *LinearChrIndex) Type() Type { return TypeLinear }

// BinWidth returns the coordinate width of each bin.
func (c *LinearChrIndex) BinWidth() int { return c.binWidth }

// NumBins returns the number of bins.
func (c *LinearChrIndex) NumBins() int { return len(c.positions) - 1 }

// LongestFeature returns the length of the longest feature on the chromosome.
func (c *LinearChrIndex) LongestFeature() int { return c.longestFeature }

// FeatureCount returns the number of features indexed on the chromosome.
func (c *LinearChrIndex) FeatureCount() int { return c.nFeatures }

// Blocks returns one block per bin, including empty bins.
func (c *LinearChrIndex) Blocks() []Block {
	blocks := make([]Block, c.NumBins())
	for i := range blocks {
		blocks[i] = Block{StartPos: c.positions[i], EndPos: c.positions[i+1]}
	}
	return blocks
}

// BlocksFor returns the single byte range covering every bin that can hold
// a feature overlapping [start, end). The search is widened to the left by
// the longest feature so that long features starting in earlier bins are
// not missed.
func (c *LinearChrIndex) BlocksFor(start, end int) []Block {
	if end <= start || end <= 0 {
		return nil
	}
	adjusted := max(start-c.longestFeature, 0)
	startBin := adjusted / c.binWidth
	last := c.NumBins() - 1
	if startBin > last {
		return nil
	}
	endBin := min(end/c.binWidth, last)

	b := Block{StartPos: c.positions[startBin], EndPos: c.positions[endBin+1]}
	if b.Size() == 0 {
		return nil
	}
	return []Block{b}
}

func (c *LinearChrIndex) encode(w *persistence.BinaryWriter) error {
	binWidth, err := conv.IntToInt32(c.binWidth)
	if err != nil {
		return err
	}
	nBins, err := conv.IntToInt32(c.NumBins())
	if err != nil {
		return err
	}
	longest, err := conv.IntToInt32(c.longestFeature)
	if err != nil {
		return err
	}
	nFeatures, err := conv.IntToInt32(c.nFeatures)
	if err != nil {
		return err
	}

	if err := w.WriteString(c.name); err != nil {
		return err
	}
	for _, v := range []int32{binWidth, nBins, longest, nFeatures} {
		if err := w.WriteInt32(v); err != nil {
			return err
		}
	}
	for _, pos := range c.positions {
		if err := w.WriteInt64(pos); err != nil {
			return err
		}
	}
	return nil
}

func (c *LinearChrIndex) equal(other ChrIndex) bool {
	o, ok := other.(*LinearChrIndex)
	if !ok {
		return false
	}
	return c.name == o.name &&
		c.binWidth == o.binWidth &&
		c.longestFeature == o.longestFeature &&
		c.nFeatures == o.nFeatures &&
		slices.Equal(c.positions, o.positions)
}

func decodeLinear(r *persistence.BinaryReader) (*LinearChrIndex, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	var fields [4]int32
	for i := range fields {
		if fields[i], err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	nBins, err := conv.Int32ToLen(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: chromosome %q: %w", ErrCorrupt, name, err)
	}
	nFeatures, err := conv.Int32ToLen(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: chromosome %q: %w", ErrCorrupt, name, err)
	}

	positions := make([]int64, 0, min(nBins+1, 1<<16))
	for i := 0; i <= nBins; i++ {
		pos, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return NewLinearChrIndex(name, int(fields[0]), int(fields[2]), nFeatures, positions)
}
