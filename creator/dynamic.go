package creator

import (
	"context"
	"strconv"

	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
	"github.com/hupe1980/genidx/internal/stats"
	"golang.org/x/sync/errgroup"
)

// DynamicOptions configures a DynamicCreator.
type DynamicOptions struct {
	// Parallel runs each candidate in its own goroutine. Every candidate
	// still sees features in input order.
	Parallel bool
	// QueueSize is the per-candidate buffer used when Parallel is set.
	QueueSize int
	// RawFeatureLengthStats feeds each feature's own length into the length
	// statistics instead of the running maximum.
	RawFeatureLengthStats bool
	// Candidates overrides the default Linear and IntervalTree candidates.
	// They must already be initialized.
	Candidates []Creator
}

// DefaultDynamicOptions are used when no options are given.
var DefaultDynamicOptions = DynamicOptions{
	QueueSize: 1024,
}

// DynamicCreator builds every candidate in one pass and keeps the one whose
// score best matches its BalancingApproach.
type DynamicCreator struct {
	path       string
	approach   BalancingApproach
	rawLengths bool

	candidates []Creator
	fan        *fanout

	longest      int
	lengths      stats.RunningStat
	featureCount int
	basesSeen    int64
	order        orderChecker

	scored    []Candidate
	finalized bool
}

var _ Builder = (*DynamicCreator)(nil)

// NewDynamicCreator creates a DynamicCreator for the file at path.
func NewDynamicCreator(path string, approach BalancingApproach, optFns ...func(o *DynamicOptions)) *DynamicCreator {
	opts := DefaultDynamicOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	candidates := opts.Candidates
	if len(candidates) == 0 {
		linear, interval := CandidateBinSizes(approach)
		candidates = []Creator{
			NewLinearCreator(path, linear),
			NewIntervalTreeCreator(path, interval),
		}
	}

	d := &DynamicCreator{
		path:       path,
		approach:   approach,
		rawLengths: opts.RawFeatureLengthStats,
		candidates: candidates,
		order:      newOrderChecker(path),
	}
	if opts.Parallel {
		d.fan = startFanout(candidates, max(opts.QueueSize, 1))
	}
	return d
}

// Approach returns the balancing approach.
func (d *DynamicCreator) Approach() BalancingApproach { return d.approach }

// AddFeature feeds f to every candidate and fails if f breaks sort order.
func (d *DynamicCreator) AddFeature(f feature.Feature, pos int64) error {
	if d.finalized {
		return ErrFinalized
	}

	d.featureCount++
	if d.order.hasLast && d.order.last.Chr == f.Chr && f.Start >= d.order.last.Start {
		d.basesSeen += int64(f.Start - d.order.last.Start)
	} else {
		d.basesSeen += int64(f.Start)
	}
	d.longest = max(d.longest, f.Len())
	if d.rawLengths {
		d.lengths.Push(float64(f.Len()))
	} else {
		d.lengths.Push(float64(d.longest))
	}

	if err := d.forward(f, pos); err != nil {
		d.Abort()
		return err
	}
	if err := d.order.check(f); err != nil {
		d.Abort()
		return err
	}
	return nil
}

func (d *DynamicCreator) forward(f feature.Feature, pos int64) error {
	if d.fan != nil {
		return d.fan.send(f, pos)
	}
	for _, c := range d.candidates {
		if err := c.AddFeature(f, pos); err != nil {
			return err
		}
	}
	return nil
}

// Finalize scores the candidates and finalizes only the winner.
func (d *DynamicCreator) Finalize(finalPos int64) (*index.Index, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	d.finalized = true

	if d.fan != nil {
		fan := d.fan
		d.fan = nil
		if err := fan.close(); err != nil {
			return nil, err
		}
	}

	density := Density(d.featureCount, d.basesSeen)
	d.scored = make([]Candidate, 0, len(d.candidates))
	for _, c := range d.candidates {
		score, err := Score(c, density, d.longest)
		if err != nil {
			return nil, err
		}
		d.scored = append(d.scored, Candidate{Score: score, Creator: c})
	}

	winner, ok := Select(d.approach, d.scored)
	if !ok {
		return nil, index.ErrUnknownType
	}
	idx, err := winner.Creator.Finalize(finalPos)
	if err != nil {
		return nil, err
	}

	idx = idx.WithProperties(map[string]string{
		index.PropFeatureLengthMean:   formatFloat(d.lengths.Mean()),
		index.PropFeatureLengthStdDev: formatFloat(d.lengths.StdDev()),
		index.PropMeanFeatureVariance: formatFloat(d.lengths.Variance()),
		index.PropFeatureCount:        strconv.Itoa(d.featureCount),
	})
	if d.rawLengths {
		src := idx.Source()
		src.Flags |= index.FlagRawLengthStats
		idx = idx.WithSource(src)
	}
	return idx, nil
}

// Candidates returns the scored candidates in registration order. It is
// empty until Finalize succeeds in scoring.
func (d *DynamicCreator) Candidates() []Candidate {
	return append([]Candidate(nil), d.scored...)
}

// Density returns the density observed so far.
func (d *DynamicCreator) Density() float64 {
	return Density(d.featureCount, d.basesSeen)
}

// LongestFeature returns the longest feature length observed so far.
func (d *DynamicCreator) LongestFeature() int { return d.longest }

// Abort stops any candidate goroutines without producing an index. It is
// safe to call more than once and after Finalize.
func (d *DynamicCreator) Abort() {
	d.finalized = true
	if d.fan != nil {
		fan := d.fan
		d.fan = nil
		_ = fan.close()
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type item struct {
	f   feature.Feature
	pos int64
}

// fanout feeds each candidate from its own goroutine.
type fanout struct {
	g      *errgroup.Group
	ctx    context.Context
	queues []chan item
}

func startFanout(candidates []Creator, queueSize int) *fanout {
	g, ctx := errgroup.WithContext(context.Background())
	fo := &fanout{g: g, ctx: ctx, queues: make([]chan item, len(candidates))}
	for i, c := range candidates {
		q := make(chan item, queueSize)
		fo.queues[i] = q
		g.Go(func() error {
			for it := range q {
				if err := c.AddFeature(it.f, it.pos); err != nil {
					// Drain so the producer never blocks on a failed candidate.
					for range q {
					}
					return err
				}
			}
			return nil
		})
	}
	return fo
}

func (fo *fanout) send(f feature.Feature, pos int64) error {
	it := item{f: f, pos: pos}
	for _, q := range fo.queues {
		select {
		case q <- it:
		case <-fo.ctx.Done():
			return fo.close()
		}
	}
	return nil
}

// close stops the workers and returns the first candidate error.
func (fo *fanout) close() error {
	if fo.queues != nil {
		for _, q := range fo.queues {
			close(q)
		}
		fo.queues = nil
	}
	return fo.g.Wait()
}
