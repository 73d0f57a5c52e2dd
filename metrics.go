package genidx

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/genidx/index"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each index build. typ is the built
	// strategy (zero on failure) and features the number of records fed to
	// the creator.
	RecordBuild(typ index.Type, features int, duration time.Duration, err error)

	// RecordLoad is called after each index load.
	RecordLoad(duration time.Duration, err error)

	// RecordWrite is called after each index write.
	RecordWrite(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(index.Type, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)                   {}
func (NoopMetricsCollector) RecordWrite(time.Duration, error)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildFeatures      atomic.Int64
	BuildTotalNanos    atomic.Int64
	LinearBuilds       atomic.Int64
	IntervalTreeBuilds atomic.Int64
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadTotalNanos     atomic.Int64
	WriteCount         atomic.Int64
	WriteErrors        atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(typ index.Type, features int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildFeatures.Add(int64(features))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	switch typ {
	case index.TypeLinear:
		b.LinearBuilds.Add(1)
	case index.TypeIntervalTree:
		b.IntervalTreeBuilds.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ time.Duration, err error) {
	b.WriteCount.Add(1)
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:         b.BuildCount.Load(),
		BuildErrors:        b.BuildErrors.Load(),
		BuildFeatures:      b.BuildFeatures.Load(),
		BuildAvgNanos:      avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		LinearBuilds:       b.LinearBuilds.Load(),
		IntervalTreeBuilds: b.IntervalTreeBuilds.Load(),
		LoadCount:          b.LoadCount.Load(),
		LoadErrors:         b.LoadErrors.Load(),
		LoadAvgNanos:       avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		WriteCount:         b.WriteCount.Load(),
		WriteErrors:        b.WriteErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount         int64
	BuildErrors        int64
	BuildFeatures      int64
	BuildAvgNanos      int64
	LinearBuilds       int64
	IntervalTreeBuilds int64
	LoadCount          int64
	LoadErrors         int64
	LoadAvgNanos       int64
	WriteCount         int64
	WriteErrors        int64
}
