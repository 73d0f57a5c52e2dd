// Package stats provides online accumulators used while building indexes.
package stats

import "math"

// RunningStat accumulates count, mean and variance in a single pass
// using Welford's update. The zero value is ready to use.
type RunningStat struct {
	n    int64
	mean float64
	m2   float64
}

// Push adds one observation.
func (s *RunningStat) Push(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

// Count returns the number of observations pushed so far.
func (s *RunningStat) Count() int64 { return s.n }

// Mean returns the arithmetic mean, or 0 when empty.
func (s *RunningStat) Mean() float64 { return s.mean }

// Variance returns the sample variance (n-1 denominator).
// Fewer than two observations yield 0.
func (s *RunningStat) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

// StdDev returns the sample standard deviation.
func (s *RunningStat) StdDev() float64 {
	return math.Sqrt(s.Variance())
}
