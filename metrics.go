package workerpool

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// cachePad is used to prevent false sharing between hot fields.
type cachePad = cpu.CacheLinePad

// MetricsPolicy defines hooks used by the worker pool to report
// queueing and execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking
type MetricsPolicy interface {

	// IncQueued increments the queued jobs counter.
	IncQueued()

	// BatchDecQueued decrements the queued counter by n.
	//
	// Workers call it with n == 1 each time they take a job off the
	// dispatch channel.
	BatchDecQueued(n int64)

	// IncExecuted increments the executed jobs counter. Failed jobs
	// count as executed.
	IncExecuted()

	// IncFailed increments the failed jobs counter (returned error or
	// recovered panic).
	IncFailed()

	// ObserveDuration records how long one job ran.
	ObserveDuration(d time.Duration)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	// executed is the total number of jobs processed.
	executed atomic.Uint64
	_        cachePad

	// failed is the total number of jobs that returned an error or panicked.
	failed atomic.Uint64
	_      cachePad

	// queued is the current number of jobs enqueued.
	queued atomic.Int64
	_      cachePad

	// busy is the accumulated execution time in nanoseconds.
	busy atomic.Int64
}

// Executed returns the total number of executed jobs.
func (m *AtomicMetrics) Executed() uint64 {
	return m.executed.Load()
}

// Failed returns the total number of failed jobs.
func (m *AtomicMetrics) Failed() uint64 {
	return m.failed.Load()
}

// Queued returns the current number of queued jobs.
func (m *AtomicMetrics) Queued() int64 {
	return m.queued.Load()
}

// Busy returns the accumulated execution time across all workers.
func (m *AtomicMetrics) Busy() time.Duration {
	return time.Duration(m.busy.Load())
}

func (m *AtomicMetrics) IncExecuted() { m.executed.Add(1) }

func (m *AtomicMetrics) IncFailed() { m.failed.Add(1) }

func (m *AtomicMetrics) IncQueued() { m.queued.Add(1) }

func (m *AtomicMetrics) BatchDecQueued(n int64) { m.queued.Add(-n) }

func (m *AtomicMetrics) ObserveDuration(d time.Duration) { m.busy.Add(int64(d)) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncExecuted()                  {}
func (m *NoopMetrics) IncFailed()                    {}
func (m *NoopMetrics) IncQueued()                    {}
func (m *NoopMetrics) BatchDecQueued(n int64)        {}
func (m *NoopMetrics) ObserveDuration(time.Duration) {}
