package creator

import (
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

// IntervalTreeDefaultBinSize is the default number of features per block.
const IntervalTreeDefaultBinSize = 600

// IntervalTreeCreator builds an index.TypeIntervalTree index whose blocks
// each hold up to BinSize features.
type IntervalTreeCreator struct {
	path             string
	featuresPerBlock int

	chrs      []index.ChrIndex
	cur       *intervalBuilder
	boundary  int64
	finalized bool
}

type intervalBuilder struct {
	name      string
	intervals []index.Interval

	// The open block, valid while count > 0.
	count      int
	start      int
	maxEnd     int
	blockStart int64
}

// NewIntervalTreeCreator returns an initialized IntervalTreeCreator.
func NewIntervalTreeCreator(path string, binSize int) *IntervalTreeCreator {
	c := &IntervalTreeCreator{}
	c.Initialize(path, binSize)
	return c
}

func (c *IntervalTreeCreator) Initialize(path string, binSize int) {
	if binSize <= 0 {
		binSize = c.DefaultBinSize()
	}
	*c = IntervalTreeCreator{path: path, featuresPerBlock: binSize}
}

func (c *IntervalTreeCreator) AddFeature(f feature.Feature, pos int64) error {
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
		c.cur = &intervalBuilder{name: f.Chr, blockStart: c.boundary}
	}

	b := c.cur
	if b.count == c.featuresPerBlock {
		b.closeBlock(pos)
		b.blockStart = pos
	}
	if b.count == 0 {
		b.start = f.Start
		b.maxEnd = f.End
	}
	b.maxEnd = max(b.maxEnd, f.End)
	b.count++
	return nil
}

func (b *intervalBuilder) closeBlock(end int64) {
	b.intervals = append(b.intervals, index.Interval{
		Start: b.start,
		End:   b.maxEnd,
		Block: index.Block{StartPos: b.blockStart, EndPos: end},
	})
	b.count = 0
}

func (c *IntervalTreeCreator) closeChromosome(end int64) error {
	b := c.cur
	c.cur = nil
	if b.count > 0 {
		b.closeBlock(end)
	}
	chr, err := index.NewIntervalChrIndex(b.name, b.intervals)
	if err != nil {
		return err
	}
	c.chrs = append(c.chrs, chr)
	return nil
}

func (c *IntervalTreeCreator) Finalize(finalPos int64) (*index.Index, error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	c.finalized = true
	if c.cur != nil {
		if err := c.closeChromosome(finalPos); err != nil {
			return nil, err
		}
	}
	return index.New(index.TypeIntervalTree, index.SourceInfo{Path: c.path}, c.chrs, nil)
}

func (c *IntervalTreeCreator) DefaultBinSize() int { return IntervalTreeDefaultBinSize }

func (c *IntervalTreeCreator) BinSize() int { return c.featuresPerBlock }

func (c *IntervalTreeCreator) Type() index.Type { return index.TypeIntervalTree }
