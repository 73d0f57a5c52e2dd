package index

import (
	"fmt"
	"slices"
	"sort"

	"github.com/hupe1980/genidx/internal/conv"
	"github.com/hupe1980/genidx/persistence"
)

// Interval is one interval-tree block: the start of its first feature, the
// largest end of any of its features, and the bytes holding them.
type Interval struct {
	Start int
	End   int
	Block Block
}

// Overlaps reports whether the interval can hold a feature overlapping the
// half-open query [start, end).
func (iv Interval) Overlaps(start, end int) bool {
	return iv.Start < end && iv.End >= start
}

// IntervalChrIndex holds a chromosome's interval blocks ordered by start.
type IntervalChrIndex struct {
	name      string
	intervals []Interval
	// prefixMaxEnd[i] is the largest End among intervals[0..i].
	prefixMaxEnd []int
}

// NewIntervalChrIndex creates an interval chromosome index. Intervals must
// be sorted by Start and by block offset.
func NewIntervalChrIndex(name string, intervals []Interval) (*IntervalChrIndex, error) {
	prefix := make([]int, len(intervals))
	for i, iv := range intervals {
		if iv.Block.Size() < 0 {
			return nil, fmt.Errorf("%w: chromosome %q: interval %d has negative size", ErrCorrupt, name, i)
		}
		prefix[i] = iv.End
		if i > 0 {
			prev := intervals[i-1]
			if iv.Start < prev.Start {
				return nil, fmt.Errorf("%w: chromosome %q: interval %d starts before its predecessor", ErrCorrupt, name, i)
			}
			if iv.Block.StartPos < prev.Block.EndPos {
				return nil, fmt.Errorf("%w: chromosome %q: interval %d overlaps its predecessor on disk", ErrCorrupt, name, i)
			}
			prefix[i] = max(prefix[i], prefix[i-1])
		}
	}
	return &IntervalChrIndex{
		name:         name,
		intervals:    intervals,
		prefixMaxEnd: prefix,
	}, nil
}

func (c *IntervalChrIndex) Name() string { return c.name }

func (c *IntervalChrIndex) Type() Type { return TypeIntervalTree }

// Intervals returns a copy of the interval table.
func (c *IntervalChrIndex) Intervals() []Interval {
	return slices.Clone(c.intervals)
}

// Blocks returns every block in offset order.
func (c *IntervalChrIndex) Blocks() []Block {
	blocks := make([]Block, len(c.intervals))
	for i, iv := range c.intervals {
		blocks[i] = iv.Block
	}
	return blocks
}

// BlocksFor returns, in offset order, the blocks of every interval that can
// hold a feature overlapping [start, end).
func (c *IntervalChrIndex) BlocksFor(start, end int) []Block {
	if end <= start {
		return nil
	}
	hi := sort.Search(len(c.intervals), func(i int) bool {
		return c.intervals[i].Start >= end
	})

	var blocks []Block
	for i := hi - 1; i >= 0; i-- {
		if c.prefixMaxEnd[i] < start {
			break
		}
		if iv := c.intervals[i]; iv.End >= start && iv.Block.Size() > 0 {
			blocks = append(blocks, iv.Block)
		}
	}
	slices.Reverse(blocks)
	return blocks
}

func (c *IntervalChrIndex) encode(w *persistence.BinaryWriter) error {
	n, err := conv.IntToInt32(len(c.intervals))
	if err != nil {
		return err
	}
	if err := w.WriteString(c.name); err != nil {
		return err
	}
	if err := w.WriteInt32(n); err != nil {
		return err
	}
	for _, iv := range c.intervals {
		start, err := conv.IntToInt32(iv.Start)
		if err != nil {
			return err
		}
		end, err := conv.IntToInt32(iv.End)
		if err != nil {
			return err
		}
		size, err := conv.Int64ToInt32(iv.Block.Size())
		if err != nil {
			return err
		}
		if err := w.WriteInt32(start); err != nil {
			return err
		}
		if err := w.WriteInt32(end); err != nil {
			return err
		}
		if err := w.WriteInt64(iv.Block.StartPos); err != nil {
			return err
		}
		if err := w.WriteInt32(size); err != nil {
			return err
		}
	}
	return nil
}

func (c *IntervalChrIndex) equal(other ChrIndex) bool {
	o, ok := other.(*IntervalChrIndex)
	if !ok {
		return false
	}
	return c.name == o.name && slices.Equal(c.intervals, o.intervals)
}

func decodeInterval(r *persistence.BinaryReader) (*IntervalChrIndex, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	raw, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	n, err := conv.Int32ToLen(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: chromosome %q: %w", ErrCorrupt, name, err)
	}

	intervals := make([]Interval, 0, min(n, 1<<16))
	for i := 0; i < n; i++ {
		start, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		end, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		pos, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, Interval{
			Start: int(start),
			End:   int(end),
			Block: Block{StartPos: pos, EndPos: pos + int64(size)},
		})
	}
	return NewIntervalChrIndex(name, intervals)
}
