package searchsimilar

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like CloudWatch
// or Prometheus.
type MetricsCollector interface {
	// RecordOpen is called after each attempt to open the database.
	RecordOpen(duration time.Duration, err error)

	// RecordQuery is called after each query. hits is the number of hits returned.
	RecordQuery(hits int, duration time.Duration, err error)

	// RecordResolve is called after the attributes of all hits were resolved
	// (or the first resolution failed).
	RecordResolve(hits int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)         {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordResolve(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount         atomic.Int64
	OpenErrors        atomic.Int64
	OpenTotalNanos    atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryTotalNanos   atomic.Int64
	QueryHits         atomic.Int64
	ResolveCount      atomic.Int64
	ResolveErrors     atomic.Int64
	ResolveTotalNanos atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(hits int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.QueryHits.Add(int64(hits))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(hits int, duration time.Duration, err error) {
	b.ResolveCount.Add(1)
	b.ResolveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:       b.OpenCount.Load(),
		OpenErrors:      b.OpenErrors.Load(),
		OpenAvgNanos:    avg(b.OpenTotalNanos.Load(), b.OpenCount.Load()),
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		QueryHits:       b.QueryHits.Load(),
		ResolveCount:    b.ResolveCount.Load(),
		ResolveErrors:   b.ResolveErrors.Load(),
		ResolveAvgNanos: avg(b.ResolveTotalNanos.Load(), b.ResolveCount.Load()),
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
	OpenCount       int64
	OpenErrors      int64
	OpenAvgNanos    int64
	QueryCount      int64
	QueryErrors     int64
	QueryAvgNanos   int64
	QueryHits       int64
	ResolveCount    int64
	ResolveErrors   int64
	ResolveAvgNanos int64
}
