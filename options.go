package workerpool

import (
	"context"
	"fmt"
	"runtime"
)

// MaxWorkers bounds Options.Workers. The worker count is fixed for the
// lifetime of a pool.
const MaxWorkers = 16

// OverloadPolicy decides what Submit does when a bounded queue is full.
type OverloadPolicy int

const (
	// OverloadBlock makes Submit wait until a worker frees a slot.
	OverloadBlock OverloadPolicy = iota

	// OverloadReject makes Submit fail fast with ErrQueueFull.
	OverloadReject
)

// Options configure a worker Pool.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the number of worker goroutines, at most MaxWorkers.
	Workers int

	// QueueCapacity bounds the number of queued, not yet running jobs.
	// Zero means unbounded.
	QueueCapacity int

	// Overload applies only when QueueCapacity > 0.
	Overload OverloadPolicy

	// Results enables the result channel.
	Results bool

	// PinWorkers locks each worker to an OS thread pinned to one CPU
	// (linux only).
	PinWorkers bool

	// Ctx carries the logger used by the pool. It is never canceled by
	// the pool and does not stop running jobs.
	Ctx context.Context

	// OnJobError receives job errors and recovered panics.
	OnJobError func(error)

	// OnInternalError receives failures of the pool itself.
	OnInternalError func(error)
}

// FillDefaults replaces zero values with defaults.
func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = min(runtime.GOMAXPROCS(0), MaxWorkers)
	}
	if o.QueueCapacity < 0 {
		o.QueueCapacity = 0
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
}

// Validate reports options a pool cannot be built from.
func (o *Options) Validate() error {
	if o.Workers > MaxWorkers {
		return fmt.Errorf("%w: %d > %d", ErrTooManyWorkers, o.Workers, MaxWorkers)
	}
	switch o.Overload {
	case OverloadBlock, OverloadReject:
	default:
		return fmt.Errorf("workerpool: unknown overload policy %d", o.Overload)
	}
	return nil
}

func (op OverloadPolicy) String() string {
	switch op {
	case OverloadBlock:
		return "block"
	case OverloadReject:
		return "reject"
	default:
		return "unknown"
	}
}
