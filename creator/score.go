package creator

import (
	"fmt"
	"math"

	"github.com/hupe1980/genidx/index"
)

// BalancingApproach selects what the dynamic creator optimizes for.
type BalancingApproach int

const (
	// ForSeekTime favors small blocks so each query reads few bytes.
	ForSeekTime BalancingApproach = iota
	// ForSize favors a compact index with few blocks.
	ForSize
)

func (a BalancingApproach) String() string {
	switch a {
	case ForSeekTime:
		return "for_seek_time"
	case ForSize:
		return "for_size"
	default:
		return fmt.Sprintf("BalancingApproach(%d)", int(a))
	}
}

// CandidateBinSizes returns the linear and interval-tree bin sizes used for
// the dynamic candidates under a.
func CandidateBinSizes(a BalancingApproach) (linear, interval int) {
	if a == ForSeekTime {
		return max(200, LinearDefaultBinSize/4), max(20, IntervalTreeDefaultBinSize/8)
	}
	return LinearDefaultBinSize, IntervalTreeDefaultBinSize
}

// Candidate is a scored creator.
type Candidate struct {
	Score   float64
	Creator Creator
}

// Density returns features per base. No features gives 0; features with no
// bases seen (every feature at one start) gives +Inf.
func Density(featureCount int, basesSeen int64) float64 {
	if featureCount == 0 {
		return 0
	}
	if basesSeen <= 0 {
		return math.Inf(1)
	}
	return float64(featureCount) / float64(basesSeen)
}

// Score estimates the number of features a unit-length query touches.
//
// A linear index with bin width B reads ceil(longest/B) bins of B bases each,
// so B * density * ceil(longest/B). An interval tree reads at most one block
// of B features.
func Score(c Creator, density float64, longestFeature int) (float64, error) {
	switch c := unwrap(c).(type) {
	case *LinearCreator:
		b := float64(c.BinSize())
		return b * density * math.Ceil(float64(longestFeature)/b), nil
	case *IntervalTreeCreator:
		return float64(c.BinSize()), nil
	default:
		return 0, fmt.Errorf("%w: cannot score %T", index.ErrUnknownType, c)
	}
}

func unwrap(c Creator) Creator {
	if o, ok := c.(*orderedCreator); ok {
		return o.Creator
	}
	return c
}

// Select returns the winning candidate: lowest score for ForSeekTime,
// highest for ForSize. Ties go to the earliest candidate.
func Select(a BalancingApproach, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if a == ForSize {
			if c.Score > best.Score {
				best = c
			}
		} else if c.Score < best.Score {
			best = c
		}
	}
	return best, true
}
