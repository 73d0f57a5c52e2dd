// Package creator builds indexes from a stream of (feature, offset) pairs.
//
// LinearCreator and IntervalTreeCreator each build one index strategy.
// DynamicCreator feeds both in lockstep during a single pass and keeps the
// one whose cost model best fits the requested BalancingApproach.
//
// Creators expect features grouped by chromosome and sorted by start within
// each chromosome. Finalize may be called once.
package creator

import (
	"errors"
	"fmt"

	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

// Builder consumes (feature, offset) pairs and produces an index.
// Both single-strategy creators and DynamicCreator implement it.
type Builder interface {
	// AddFeature records a feature found at byte offset pos.
	AddFeature(f feature.Feature, pos int64) error
	// Finalize closes the last block at finalPos and returns the index.
	Finalize(finalPos int64) (*index.Index, error)
}

// Creator incrementally builds one index strategy.
type Creator interface {
	Builder
	// Initialize sets the indexed file path and the bin size.
	// A binSize <= 0 selects DefaultBinSize.
	Initialize(path string, binSize int)
	DefaultBinSize() int
	BinSize() int
	Type() index.Type
}

var (
	// ErrFinalized is returned when a creator is used after Finalize.
	ErrFinalized = errors.New("creator already finalized")
	// ErrInvalidFeature is returned for features a creator cannot place.
	ErrInvalidFeature = errors.New("invalid feature")
)

// OutOfOrderError reports a feature whose start precedes the previous
// feature on the same chromosome.
type OutOfOrderError struct {
	Path      string
	Chr       string
	PrevStart int
	Start     int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("%s: features out of order on %s: start %d follows start %d",
		e.Path, e.Chr, e.Start, e.PrevStart)
}

// UnsortedChromosomeError reports a chromosome that reappears after the
// file moved on to another one.
type UnsortedChromosomeError struct {
	Path string
	Chr  string
	Prev string
}

func (e *UnsortedChromosomeError) Error() string {
	return fmt.Sprintf("%s: chromosome %s reappears after %s; features must be grouped by chromosome",
		e.Path, e.Chr, e.Prev)
}

// orderChecker enforces per-chromosome start order and chromosome grouping.
type orderChecker struct {
	path    string
	last    feature.Feature
	hasLast bool
	done    map[string]struct{}
}

func newOrderChecker(path string) orderChecker {
	return orderChecker{path: path, done: make(map[string]struct{})}
}

func (o *orderChecker) check(f feature.Feature) error {
	if o.hasLast {
		if f.Chr == o.last.Chr {
			if f.Start < o.last.Start {
				return &OutOfOrderError{Path: o.path, Chr: f.Chr, PrevStart: o.last.Start, Start: f.Start}
			}
		} else {
			if _, seen := o.done[f.Chr]; seen {
				return &UnsortedChromosomeError{Path: o.path, Chr: f.Chr, Prev: o.last.Chr}
			}
			o.done[o.last.Chr] = struct{}{}
		}
	}
	o.last = f
	o.hasLast = true
	return nil
}

// Ordered wraps c so that AddFeature also rejects unsorted input; path is
// named in the resulting errors. The feature is forwarded to c before it is
// checked.
func Ordered(c Creator, path string) Creator {
	return &orderedCreator{Creator: c, order: newOrderChecker(path)}
}

type orderedCreator struct {
	Creator
	order orderChecker
}

func (o *orderedCreator) Initialize(path string, binSize int) {
	o.Creator.Initialize(path, binSize)
	o.order = newOrderChecker(path)
}

func (o *orderedCreator) AddFeature(f feature.Feature, pos int64) error {
	if err := o.Creator.AddFeature(f, pos); err != nil {
		return err
	}
	return o.order.check(f)
}

func checkPlaceable(f feature.Feature) error {
	if f.Start < 0 {
		return fmt.Errorf("%w: %s has a negative start", ErrInvalidFeature, f)
	}
	if f.End < f.Start {
		return fmt.Errorf("%w: %s ends before it starts", ErrInvalidFeature, f)
	}
	return nil
}
