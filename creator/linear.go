package creator

import (
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

// LinearDefaultBinSize is the default bin width in bases.
const LinearDefaultBinSize = 8000

// LinearCreator builds an index.TypeLinear index of fixed-width bins.
type LinearCreator struct {
	path     string
	binWidth int

	chrs []index.ChrIndex
	cur  *linearBuilder
	// boundary is the offset at which the next chromosome's first bin begins.
	boundary  int64
	finalized bool
}

type linearBuilder struct {
	name string
	// positions[i] is the start offset of bin i; the bin ends where the
	// next one starts.
	positions []int64
	longest   int
	n         int
}

// NewLinearCreator returns an initialized LinearCreator.
func NewLinearCreator(path string, binSize int) *LinearCreator {
	c := &LinearCreator{}
	c.Initialize(path, binSize)
	return c
}

func (c *LinearCreator) Initialize(path string, binSize int) {
	if binSize <= 0 {
		binSize = c.DefaultBinSize()
	}
	*c = LinearCreator{path: path, binWidth: binSize}
}

func (c *LinearCreator) AddFeature(f feature.Feature, pos int64) error {
	if c.finalized {
		return ErrFinalized
	}
	if err := checkPlaceable(f); err != nil {
		return err
	}

	if c.cur == nil || c.cur.name != f.Chr {
		if c.cur != nil {
			if err := c.closeChromosome(pos); err != nil {
				return err
			}
			c.boundary = pos
		}
		c.cur = &linearBuilder{name: f.Chr}
	}

	b := c.cur
	bin := f.Start / c.binWidth
	if len(b.positions) == 0 {
		// Bins before the chromosome's first feature are empty and start,
		// like the first occupied bin, at the chromosome boundary.
		for range bin + 1 {
			b.positions = append(b.positions, c.boundary)
		}
	}
	for len(b.positions) <= bin {
		b.positions = append(b.positions, pos)
	}

	b.longest = max(b.longest, f.Len())
	b.n++
	return nil
}

func (c *LinearCreator) closeChromosome(end int64) error {
	b := c.cur
	c.cur = nil
	chr, err := index.NewLinearChrIndex(b.name, c.binWidth, b.longest, b.n, append(b.positions, end))
	if err != nil {
		return err
	}
	c.chrs = append(c.chrs, chr)
	return nil
}

func (c *LinearCreator) Finalize(finalPos int64) (*index.Index, error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	c.finalized = true
	if c.cur != nil {
		if err := c.closeChromosome(finalPos); err != nil {
			return nil, err
		}
	}
	return index.New(index.TypeLinear, index.SourceInfo{Path: c.path}, c.chrs, nil)
}

func (c *LinearCreator) DefaultBinSize() int { return LinearDefaultBinSize }

func (c *LinearCreator) BinSize() int { return c.binWidth }

func (c *LinearCreator) Type() index.Type { return index.TypeLinear }
