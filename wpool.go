package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
)

// Pool runs submitted jobs on a fixed set of worker goroutines.
//
// R is the job result type, M the metrics sink. A Pool is built once,
// accepts submissions until Shutdown, and must not be reused afterwards.
type Pool[R any, M MetricsPolicy] struct {
	dispatch *channel[message[R]]
	results  *channel[Result[R]] // nil when results are disabled

	workers       int
	activeWorkers atomic.Int32
	wg            sync.WaitGroup

	stopOnce sync.Once
	closed   chan struct{} // closed once Shutdown has sealed the dispatch channel
	done     chan struct{} // closed once every worker has exited
	sendErr  error

	overload        OverloadPolicy
	pin             bool
	metrics         M
	ctx             context.Context
	onJobError      func(error)
	onInternalError func(error)
}

// NewPool builds a pool from opts and starts exactly opts.Workers workers.
func NewPool[R any, M MetricsPolicy](metrics M, opts Options) (*Pool[R, M], error) {
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Pool[R, M]{
		dispatch:        newChannel[message[R]](1, opts.Workers, opts.QueueCapacity),
		workers:         opts.Workers,
		closed:          make(chan struct{}),
		done:            make(chan struct{}),
		overload:        opts.Overload,
		pin:             opts.PinWorkers,
		metrics:         metrics,
		ctx:             opts.Ctx,
		onJobError:      opts.OnJobError,
		onInternalError: opts.OnInternalError,
	}
	if opts.Results {
		p.results = newChannel[Result[R]](opts.Workers, 1, 0)
	}

	p.wg.Add(p.workers)
	for i := range p.workers {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()

	lg.FromContext(p.ctx).Info("worker pool started",
		lg.Int("workers", p.workers),
		lg.Int("queue_capacity", opts.QueueCapacity),
		lg.String("overload", opts.Overload.String()),
		lg.Any("results", opts.Results),
	)
	return p, nil
}

// New builds an unbounded pool with results enabled and no metrics.
func New[R any](workers int) (*Pool[R, *NoopMetrics], error) {
	return NewPool[R](&NoopMetrics{}, Options{Workers: workers, Results: true})
}

// Submit hands job to the pool.
//
// Submit never waits for a free worker. On an unbounded pool it returns
// as soon as the job is queued; on a bounded pool the overload policy
// decides between waiting for a queue slot and ErrQueueFull.
func (p *Pool[R, M]) Submit(job Job[R]) error {
	mode := sendBlock
	if p.overload == OverloadReject {
		mode = sendTry
	}
	return p.submit(job, mode)
}

// TrySubmit is Submit that never waits, whatever the overload policy.
func (p *Pool[R, M]) TrySubmit(job Job[R]) error {
	return p.submit(job, sendTry)
}

func (p *Pool[R, M]) submit(job Job[R], mode sendMode) error {
	if job == nil {
		return ErrNilJob
	}
	p.metrics.IncQueued()
	if err := p.dispatch.send(newJobMsg(job), mode); err != nil {
		p.metrics.BatchDecQueued(1)
		if errors.Is(err, errChannelFull) {
			return ErrQueueFull
		}
		return ErrClosed
	}
	return nil
}

// TryTakeResult returns the next completed result if one is queued.
func (p *Pool[R, M]) TryTakeResult() (Result[R], bool) {
	if p.results == nil {
		return Result[R]{}, false
	}
	return p.results.tryRecv()
}

// TakeResult blocks until a result is available.
//
// Results arrive in completion order, not submission order.
func (p *Pool[R, M]) TakeResult() (Result[R], error) {
	if p.results == nil {
		return Result[R]{}, ErrResultsDisabled
	}
	r, ok := p.results.recv()
	if !ok {
		return r, ErrResultsDrained
	}
	return r, nil
}

// Shutdown stops the pool and waits for every worker to exit.
//
// The first call queues one terminate message per worker behind any
// pending jobs and seals the dispatch channel, so later Submit calls
// fail with ErrClosed. Jobs already queued still run. Running jobs are
// never interrupted.
//
// If ctx ends first Shutdown returns ctx.Err() and the workers keep
// draining; calling Shutdown again waits for them.
func (p *Pool[R, M]) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		terms := make([]message[R], p.workers)
		for i := range terms {
			terms[i] = terminateMsg[R]()
		}
		if err := p.dispatch.seal(terms...); err != nil {
			p.sendErr = fmt.Errorf("%w: %w", ErrSendFailed, err)
			p.reportInternalError(p.sendErr)
		}
		close(p.closed)
		lg.FromContext(p.ctx).Info("worker pool shutting down",
			lg.Int("pending", p.dispatch.len()),
			lg.Int32("active_workers", p.activeWorkers.Load()),
		)
	})

	select {
	case <-p.done:
		return p.sendErr
	case <-ctx.Done():
		return multierr.Append(p.sendErr, ctx.Err())
	}
}

// Stop is a blocking Shutdown.
func (p *Pool[R, M]) Stop() { _ = p.Shutdown(context.Background()) }

// Closed reports whether Shutdown has been called.
func (p *Pool[R, M]) Closed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Done is closed once every worker has exited.
func (p *Pool[R, M]) Done() <-chan struct{} { return p.done }

func (p *Pool[R, M]) Workers() int         { return p.workers }
func (p *Pool[R, M]) ActiveWorkers() int32 { return p.activeWorkers.Load() }
func (p *Pool[R, M]) QueueLength() int     { return p.dispatch.len() }
func (p *Pool[R, M]) Metrics() M           { return p.metrics }
