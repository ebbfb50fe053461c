package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetrics summarizes one Search call for diagnostics and the
// speedup-style experiments component G's batch harness runs.
type SearchMetrics struct {
	Iterations  int
	Duration    time.Duration
	FinalLambda float64
}

// SearchMetricsCollector aggregates SearchMetrics across many concurrent
// Search calls. The zero value is ready to use; all methods are safe for
// concurrent use from SearchMany's worker pool.
type SearchMetricsCollector struct {
	totalIterations int64
	totalSearches   int64
	totalNanos      int64
}

// Record folds one completed Search's metrics into the running totals.
func (c *SearchMetricsCollector) Record(m SearchMetrics) {
	atomic.AddInt64(&c.totalIterations, int64(m.Iterations))
	atomic.AddInt64(&c.totalSearches, 1)
	atomic.AddInt64(&c.totalNanos, int64(m.Duration))
}

// MeanIterations returns the average iteration count across every
// recorded search, or 0 if none have been recorded yet.
func (c *SearchMetricsCollector) MeanIterations() float64 {
	searches := atomic.LoadInt64(&c.totalSearches)
	if searches == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&c.totalIterations)) / float64(searches)
}

// MeanDuration returns the average wall-clock duration per search.
func (c *SearchMetricsCollector) MeanDuration() time.Duration {
	searches := atomic.LoadInt64(&c.totalSearches)
	if searches == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&c.totalNanos) / searches)
}

// TotalSearches returns the number of searches recorded so far.
func (c *SearchMetricsCollector) TotalSearches() int64 {
	return atomic.LoadInt64(&c.totalSearches)
}

// NullSearchMetricsCollector discards every recorded metric, matching the
// real/no-op collector idiom. SearchMany takes a *SearchMetricsCollector
// and does not accept this type.
type NullSearchMetricsCollector struct{}

// Record has the same signature as SearchMetricsCollector.Record and does
// nothing.
func (NullSearchMetricsCollector) Record(SearchMetrics) {}
