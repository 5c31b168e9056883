package vecstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each Add. count is the batch size.
	RecordAdd(count int, duration time.Duration, err error)

	// RecordSearch is called after each Search.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordBatchSearch is called after each BatchSearch.
	RecordBatchSearch(queries, k int, duration time.Duration, err error)

	// RecordDelete is called after each Delete with the number of ids
	// requested and removed.
	RecordDelete(requested, removed int, duration time.Duration, err error)

	// RecordSave is called after each Save; bytes is the artifact size.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each Load with the loaded entry count.
	RecordLoad(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordBatchSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(int, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)           {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddItems         atomic.Int64
	AddErrors        atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	BatchSearchCount atomic.Int64
	BatchSearchRows  atomic.Int64
	DeleteCount      atomic.Int64
	DeletedItems     atomic.Int64
	DeleteErrors     atomic.Int64
	SaveCount        atomic.Int64
	SaveBytes        atomic.Int64
	SaveErrors       atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(count int, _ time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
		return
	}
	b.AddItems.Add(int64(count))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordBatchSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchSearch(queries, _ int, _ time.Duration, err error) {
	b.BatchSearchCount.Add(1)
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.BatchSearchRows.Add(int64(queries))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_, removed int, _ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
		return
	}
	b.DeletedItems.Add(int64(removed))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (b *BasicMetricsCollector) Snapshot() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:         b.AddCount.Load(),
		AddItems:         b.AddItems.Load(),
		AddErrors:        b.AddErrors.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   b.avgSearchNanos(),
		BatchSearchCount: b.BatchSearchCount.Load(),
		BatchSearchRows:  b.BatchSearchRows.Load(),
		DeleteCount:      b.DeleteCount.Load(),
		DeletedItems:     b.DeletedItems.Load(),
		DeleteErrors:     b.DeleteErrors.Load(),
		SaveCount:        b.SaveCount.Load(),
		SaveBytes:        b.SaveBytes.Load(),
		SaveErrors:       b.SaveErrors.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) avgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount         int64
	AddItems         int64
	AddErrors        int64
	SearchCount      int64
	SearchErrors     int64
	SearchAvgNanos   int64
	BatchSearchCount int64
	BatchSearchRows  int64
	DeleteCount      int64
	DeletedItems     int64
	DeleteErrors     int64
	SaveCount        int64
	SaveBytes        int64
	SaveErrors       int64
	LoadCount        int64
	LoadErrors       int64
}
