package workerpool

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Submit once the pool has been shut down
	// or no worker is left to receive the job.
	ErrClosed = errors.New("workerpool: pool closed")

	// ErrQueueFull is returned by Submit when a bounded pool configured
	// with OverloadReject has no free slot.
	ErrQueueFull = errors.New("workerpool: queue is full")

	// ErrNilJob is returned when a nil Job is submitted.
	ErrNilJob = errors.New("workerpool: job is nil")

	// ErrSendFailed is returned by Shutdown when the terminate messages
	// could not be enqueued. Workers are still waited for.
	ErrSendFailed = errors.New("workerpool: terminate send failed")

	// ErrTooManyWorkers is returned when Options.Workers exceeds MaxWorkers.
	ErrTooManyWorkers = errors.New("workerpool: too many workers")

	// ErrResultsDisabled is returned by TakeResult on a pool built
	// without a result channel.
	ErrResultsDisabled = errors.New("workerpool: results disabled")

	// ErrResultsDrained is returned by TakeResult when every worker has
	// exited and no result is left.
	ErrResultsDrained = errors.New("workerpool: results drained")

	// ErrJobAborted is the Result error of a job that called
	// runtime.Goexit instead of returning.
	ErrJobAborted = errors.New("workerpool: job aborted")

	// ErrJobPanicked is wrapped by every PanicError.
	ErrJobPanicked = errors.New("workerpool: job panicked")
)

// Job is a single unit of work submitted to the pool.
//
// Execute is called exactly once, by exactly one worker. The job owns
// whatever resources it needs; after Submit nobody else may touch them.
type Job[R any] interface {
	Execute() (R, error)
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc[R any] func() (R, error)

// Execute calls f.
func (f JobFunc[R]) Execute() (R, error) { return f() }

// Result is the outcome of one executed job, as delivered on the
// result channel.
type Result[R any] struct {
	Value R
	Err   error
}

// PanicError is the typed failure produced when a job panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrJobPanicked, e.Value)
}

func (e *PanicError) Unwrap() error { return ErrJobPanicked }
